package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/cell"
	"github.com/npillmayer/relex/eval"
	"github.com/npillmayer/relex/hoist"
	"github.com/npillmayer/relex/relexlang"
	"github.com/npillmayer/relex/sexp"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

var stdEnv *relex.Environment

// main() starts an interactive CLI ("R.REPL"), where users may enter
// relex expressions. R.REPL will evaluate the expression and print out
// the result. Cells survive between inputs:
//
//	(defc a 7)          creates an input cell and binds it to a
//	(defc= b (* a 2))   creates a formula cell over a
//	(watch b)           prints every settled change of b
//	(reset! a 5)        edits a; b recomputes and its watcher fires
//
// Please refer to packages "hoist" and "cell".
//
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	initf := flag.String("init", "", "Initial load")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	pterm.Info.Println("Welcome to R.REPL")   // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up environment and cell graph
	env, g := initSymbols()
	tracer().SetTraceLevel(traceLevel(*tlevel)) // now set the user supplied level
	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	tracer().Infof("Input argument is \"%s\"", input)
	//
	// set up REPL
	repl, err := readline.NewEx(&readline.Config{
		Prompt:       "relex> ",
		AutoComplete: newCompleter(env),
	})
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{
		lastInput: input,
		repl:      repl,
		env:       env,
		graph:     g,
	}
	if input != "" {
		if _, err := intp.Eval(input); err != nil {
			os.Exit(2)
		}
	}
	//
	// load an init file and start receiving commands / expressions
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.loadInitFile(*initf)           // init file name provided by flag
	intp.REPL()                         // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Pre-load the standard environment, the cell builtins over a fresh
// graph, and some cells to play with:
// a = an input cell holding 7
// b = an input cell holding [1 2]
//
func initSymbols() (*relex.Environment, *cell.Graph) {
	stdEnv = eval.StdEnv()
	g := cell.NewGraph()
	cell.Install(stdEnv, g)
	env := relex.NewEnvironment("repl", stdEnv)
	env.Def("a", g.Cell(int64(7)))
	env.Def("b", g.Cell([]interface{}{int64(1), int64(2)}))
	return env, g
}

// Intp is our interpreter object
type Intp struct {
	lastInput string
	lastValue interface{}
	repl      *readline.Instance
	env       *relex.Environment
	graph     *cell.Graph
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return
	}
	forms, err := relexlang.ParseAll(string(data))
	if err != nil {
		tracer().Errorf("Error in init file: %v", err)
		return
	}
	for i, form := range forms {
		if handled, err := intp.command(form); handled {
			if err != nil {
				tracer().Errorf("Error in init form %d: %v", i+1, err)
			}
			continue
		}
		if _, err := eval.Eval(form, intp.env); err != nil {
			tracer().Errorf("Error in init form %d: %v", i+1, err)
		}
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

// Eval reads all expressions on a line and evaluates them in order.
// Command forms (defc, defc=, hoist, watch, tree) are intercepted,
// everything else goes through the evaluator and the result is printed.
//
func (intp *Intp) Eval(line string) (bool, error) {
	intp.lastInput = line
	forms, err := relexlang.ParseAll(line)
	if err != nil {
		pterm.Error.Println(err.Error())
		return false, err
	}
	for _, form := range forms {
		if handled, err := intp.command(form); handled {
			if err != nil {
				pterm.Error.Println(err.Error())
				return false, err
			}
			continue
		}
		v, err := eval.Eval(form, intp.env)
		if err != nil {
			pterm.Error.Println(err.Error())
			return false, err
		}
		intp.lastValue = v
		intp.printResult(v)
	}
	return false, nil
}

func (intp *Intp) printResult(v interface{}) {
	if err, ok := v.(error); ok {
		pterm.Error.Println(err.Error())
		return
	}
	pterm.Info.Println(eval.FormatValue(v))
}

// command intercepts the REPL-level command forms. It reports whether
// the form was one.
func (intp *Intp) command(form sexp.Node) (bool, error) {
	call, ok := form.(*sexp.Seq)
	if !ok {
		return false, nil
	}
	head, ok := call.HeadSymbol()
	if !ok {
		return false, nil
	}
	switch head {
	case "defc":
		return true, intp.defineCell(call, false)
	case "defc=":
		return true, intp.defineCell(call, true)
	case "hoist":
		return true, intp.showHoist(call)
	case "watch":
		return true, intp.watchCell(call)
	case "tree":
		return true, intp.showTree(call)
	}
	return false, nil
}

// defineCell handles (defc name expr) and (defc= name expr). The first
// evaluates expr once and wraps the value in an input cell, the second
// hoists expr into a formula cell.
func (intp *Intp) defineCell(call *sexp.Seq, formula bool) error {
	if len(call.Items) != 3 {
		name, _ := call.HeadSymbol()
		return fmt.Errorf("usage: (%s name expr)", name)
	}
	name, ok := call.Items[1].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("cell name must be a symbol")
	}
	var c *cell.Cell
	var err error
	if formula {
		c, err = cell.FormulaOf(intp.graph, call.Items[2], intp.env)
	} else {
		var v interface{}
		v, err = eval.Eval(call.Items[2], intp.env)
		if err == nil {
			c = intp.graph.Cell(v)
		}
	}
	if err != nil {
		return err
	}
	intp.env.Def(name.Name, c)
	pterm.Info.Println(name.Name + " = " + c.String())
	return nil
}

// showHoist displays the result of hoisting an expression: the
// synthesized closure and the argument list, as trees.
func (intp *Intp) showHoist(call *sexp.Seq) error {
	if len(call.Items) != 2 {
		return fmt.Errorf("usage: (hoist expr)")
	}
	closure, args, err := hoist.Hoist(call.Items[1], intp.env)
	if err != nil {
		return err
	}
	ll := pterm.LeveledList{}
	ll = append(ll, pterm.LeveledListItem{Level: 0, Text: "closure"})
	ll = leveledNode(closure, ll, 1)
	ll = append(ll, pterm.LeveledListItem{Level: 0, Text: "arguments"})
	for _, a := range args {
		ll = leveledNode(a, ll, 1)
	}
	root := pterm.NewTreeFromLeveledList(ll)
	return pterm.DefaultTree.WithRoot(root).Render()
}

// watchCell attaches a printing watcher to a cell bound in the
// environment.
func (intp *Intp) watchCell(call *sexp.Seq) error {
	if len(call.Items) != 2 {
		return fmt.Errorf("usage: (watch name)")
	}
	name, ok := call.Items[1].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("watch expects a cell name")
	}
	v, ok := intp.env.Lookup(name.Name)
	if !ok {
		return fmt.Errorf("unbound symbol %s", name.Name)
	}
	c, ok := v.(*cell.Cell)
	if !ok {
		return fmt.Errorf("%s is not a cell", name.Name)
	}
	key := c.Watch(func(_ string, old, new interface{}) {
		pterm.Info.Println(fmt.Sprintf("%s: %s -> %s", name.Name,
			eval.FormatValue(old), eval.FormatValue(new)))
	})
	tracer().Debugf("watcher %s on %s", key, name.Name)
	return nil
}

// showTree renders the parse tree of an expression on the terminal.
func (intp *Intp) showTree(call *sexp.Seq) error {
	if len(call.Items) != 2 {
		return fmt.Errorf("usage: (tree expr)")
	}
	ll := leveledNode(call.Items[1], pterm.LeveledList{}, 0)
	root := pterm.NewTreeFromLeveledList(ll)
	return pterm.DefaultTree.WithRoot(root).Render()
}

// leveledNode flattens an expression tree into a pterm leveled list.
func leveledNode(n sexp.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	switch x := n.(type) {
	case *sexp.Seq:
		items := x.Items
		label := "()"
		if x.Kind == sexp.VectorSeq {
			label = "[]"
		} else if name, ok := x.HeadSymbol(); ok {
			label = name
			items = x.Items[1:]
		}
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: label})
		for _, item := range items {
			ll = leveledNode(item, ll, level+1)
		}
	case *sexp.Mapping:
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: "{}"})
		for _, p := range x.Pairs {
			ll = leveledNode(p.Key, ll, level+1)
			ll = leveledNode(p.Val, ll, level+2)
		}
	case *sexp.Set:
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: "#{}"})
		for _, item := range x.Items {
			ll = leveledNode(item, ll, level+1)
		}
	default:
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: n.String()})
	}
	return ll
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
