package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/sandrolain/gotdop"
	"github.com/sandrolain/gotdop/pkg/arith"
	"github.com/sandrolain/gotdop/pkg/types"
)

const (
	promptMain = "$(( "
	promptCont = "... "
)

const replHelp = `Enter an arithmetic expression to evaluate it. Variables persist between lines.
Commands:
  :tree EXPR   print the typed tree of EXPR
  :vars        list variables
  :metrics     print compiler metrics
  :help        show this help
  :quit        leave
`

// lineReader is the part of *liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	compiler *gotdop.Compiler
	env      *arith.Env
	gatherer prometheus.Gatherer
	in       lineReader
	out      io.Writer
}

func runREPL(c *gotdop.Compiler, env *arith.Env, g prometheus.Gatherer, stdout io.Writer) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	fmt.Fprintf(stdout, "gotdop %s. Type :help for help.\n", gotdop.Version())
	r := &repl{compiler: c, env: env, gatherer: g, in: ln, out: stdout}
	r.loop()
	return 0
}

// entry is one complete input: a command, or an expression with the result
// of parsing it.
type entry struct {
	src  string
	expr arith.Expr
	err  error
}

func (r *repl) loop() {
	for {
		in, ok := r.read()
		if !ok {
			fmt.Fprintln(r.out)
			return
		}
		if in.src == "" {
			continue
		}
		r.in.AppendHistory(strings.ReplaceAll(in.src, "\n", " "))

		if strings.HasPrefix(in.src, ":") {
			if quit := r.command(in.src); quit {
				return
			}
			continue
		}
		r.eval(in)
	}
}

// read collects lines until they form a complete expression or fail with an
// error other than running out of input. It reports false at end of input.
func (r *repl) read() (entry, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := r.in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return entry{}, false
		}
		if err != nil {
			// Ctrl+C drops the pending input.
			return entry{}, true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := strings.TrimSpace(b.String())
		if src == "" || strings.HasPrefix(src, ":") {
			return entry{src: src}, true
		}
		expr, err := r.compiler.Compile(src)
		if types.CodeOf(err) != types.ErrUnexpectedEnd {
			return entry{src: src, expr: expr, err: err}, true
		}
	}
}

func (r *repl) eval(in entry) {
	if in.err != nil {
		fmt.Fprintf(r.out, "Error parsing: %v\n", in.err)
		return
	}
	v, err := r.compiler.EvalExpr(context.Background(), in.expr, r.env)
	if err != nil {
		fmt.Fprintf(r.out, "Error evaluating %s: %v\n", in.expr, err)
		return
	}
	fmt.Fprintf(r.out, "%s  =>  %d\n", in.expr, v)
}

func (r *repl) command(line string) (quit bool) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprint(r.out, replHelp)
	case ":vars":
		r.printVars()
	case ":tree":
		if arg == "" {
			fmt.Fprintln(r.out, "usage: :tree EXPR")
			return false
		}
		expr, err := r.compiler.Compile(arg)
		if err != nil {
			fmt.Fprintf(r.out, "Error parsing: %v\n", err)
			return false
		}
		if err := r.compiler.Format(r.out, expr); err != nil {
			fmt.Fprintf(r.out, "Error printing: %v\n", err)
		}
	case ":metrics":
		if err := r.printMetrics(); err != nil {
			fmt.Fprintf(r.out, "Error gathering metrics: %v\n", err)
		}
	default:
		fmt.Fprintf(r.out, "unknown command %s. Type :help for help.\n", name)
	}
	return false
}

func (r *repl) printVars() {
	for _, name := range r.env.Vars() {
		fmt.Fprintf(r.out, "%s = %d\n", name, r.env.Get(name))
	}
	for _, name := range r.env.Arrays() {
		a, _ := r.env.Array(name)
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = fmt.Sprint(v)
		}
		fmt.Fprintf(r.out, "%s = (%s)\n", name, strings.Join(parts, " "))
	}
}

func (r *repl) printMetrics() error {
	families, err := r.gatherer.Gather()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return err
		}
	}
	_, err = r.out.Write(buf.Bytes())
	return err
}
