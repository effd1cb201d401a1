package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-kit/log"
	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gotdop"
	"github.com/sandrolain/gotdop/pkg/arith"
)

// scriptedReader replays lines; "^C" stands for an aborted prompt.
type scriptedReader struct {
	lines   []string
	prompts []string
	history []string
}

func (s *scriptedReader) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", liner.ErrPromptAborted
	}
	return line, nil
}

func (s *scriptedReader) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func newTestREPL(t *testing.T, lines ...string) (*repl, *scriptedReader, *bytes.Buffer) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := gotdop.New(gotdop.DefaultConfig(), log.NewNopLogger(), reg)
	require.NoError(t, err)

	in := &scriptedReader{lines: lines}
	var out bytes.Buffer
	return &repl{compiler: c, env: arith.NewEnv(), gatherer: reg, in: in, out: &out}, in, &out
}

func TestREPLSession(t *testing.T) {
	r, in, out := newTestREPL(t,
		"x = 2",
		"x * (",
		"3 + 1)",
		":vars",
		":tree x",
		":nope",
		"1 / 0",
		"1 +)",
		":quit",
		"unreached",
	)
	r.loop()

	expected := "(= x 2)  =>  2\n" +
		"(* x (+ 3 1))  =>  8\n" +
		"x = 2\n" +
		"(arith_expr.Var name:x)\n" +
		"unknown command :nope. Type :help for help.\n"
	assert.Equal(t, expected, out.String()[:len(expected)])
	assert.Contains(t, out.String(), "Error evaluating (/ 1 0): ")
	assert.Contains(t, out.String(), "Error parsing: ")

	assert.Equal(t, []string{"unreached"}, in.lines)
	assert.Equal(t, []string{promptMain, promptMain, promptCont}, in.prompts[:3])
	assert.Equal(t, "x * ( 3 + 1)", in.history[1])
}

func TestREPLEndOfInput(t *testing.T) {
	r, _, out := newTestREPL(t, "a[1] = 5", "", ":vars")
	r.loop()
	assert.Equal(t, "(= (get a 1) 5)  =>  5\na = (0 5)\n\n", out.String())
}

func TestREPLAbortDropsPendingInput(t *testing.T) {
	r, in, out := newTestREPL(t, "1 +", "^C", "7")
	r.loop()
	assert.Equal(t, "7  =>  7\n\n", out.String())
	assert.Equal(t, []string{"7"}, in.history)
}

func TestREPLMetrics(t *testing.T) {
	r, _, out := newTestREPL(t, "1 + 1", ":metrics")
	r.loop()
	assert.Contains(t, out.String(), `gotdop_evaluations_total{outcome="success"} 1`)
	assert.Contains(t, out.String(), "gotdop_expression_cache_requests_total 1\n")
	assert.Contains(t, out.String(), "gotdop_expression_cache_hits_total 0\n")
}

func TestREPLCompilesEachLineOnce(t *testing.T) {
	r, _, out := newTestREPL(t, "2 * (", "3)", "2 * (\n3)", ":metrics")
	r.loop()
	assert.Contains(t, out.String(), `gotdop_evaluations_total{outcome="success"} 2`)
	// "2 * (" misses once, the joined source misses then hits.
	assert.Contains(t, out.String(), "gotdop_expression_cache_requests_total 3\n")
	assert.Contains(t, out.String(), "gotdop_expression_cache_hits_total 1\n")
}

func TestREPLHelp(t *testing.T) {
	r, _, out := newTestREPL(t, ":help", ":tree")
	r.loop()
	assert.Equal(t, replHelp+"usage: :tree EXPR\n\n", out.String())
}
