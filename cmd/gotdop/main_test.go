package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gotdop"
	"github.com/sandrolain/gotdop/pkg/arith"
)

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunParse(t *testing.T) {
	code, stdout, _ := runCLI("parse", "1+2*3")
	assert.Equal(t, 0, code)
	assert.Equal(t, "(+ 1 (* 2 3))\n", stdout)
}

func TestRunEval(t *testing.T) {
	code, stdout, stderr := runCLI("-var", "x=4", "-var", "a=1,2,3", "eval", "x * a[2]")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "(* x (get a 2))  =>  12\n", stdout)
}

func TestRunTree(t *testing.T) {
	code, stdout, stderr := runCLI("-color=never", "tree", "x")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "(arith_expr.Var name:x)\n", stdout)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"no arguments", nil, 2, "Usage: gotdop"},
		{"unknown flag", []string{"-nope", "parse", "1"}, 2, "flag provided but not defined"},
		{"bad variable", []string{"-var", "x", "eval", "x"}, 2, "expected name=value"},
		{"invalid action", []string{"run", "1"}, 2, `Invalid action "run"`},
		{"repl with expression", []string{"repl", "1"}, 2, "Usage: gotdop"},
		{"missing expression", []string{"eval"}, 2, "Usage: gotdop"},
		{"bad log level", []string{"-log.level=loud", "parse", "1"}, 2, `invalid log level "loud"`},
		{"parse error", []string{"parse", "1 +"}, 1, `Error parsing "1 +"`},
		{"eval error", []string{"eval", "1 / 0"}, 1, "Error evaluating (/ 1 0)"},
		{"invalid config", []string{"-color=rainbow", "parse", "1"}, 1, "creating compiler"},
		{"missing config file", []string{"-config.file=/nonexistent/gotdop.yaml", "parse", "1"}, 1, "loading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gotdop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color: html\nmax_columns: 20\n"), 0o600))

	code, stdout, stderr := runCLI("-config.file="+path, "tree", "x")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "<html>")

	// Flags win over the file; settings the flags leave alone come from it.
	code, stdout, stderr = runCLI("-config.file="+path, "-color=never", "tree", "x")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "(arith_expr.Var\n  name: x\n)\n", stdout)
}

func TestOverrideFromFlags(t *testing.T) {
	fileCfg := gotdop.DefaultConfig()
	fileCfg.CacheSize = 1
	fileCfg.MaxColumns = 20

	flagCfg := gotdop.DefaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flagCfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-max-columns=50"}))

	cfg := overrideFromFlags(fs, fileCfg, flagCfg)
	assert.Equal(t, 1, cfg.CacheSize)
	assert.Equal(t, 50, cfg.MaxColumns)
}

func TestSetVar(t *testing.T) {
	env := arith.NewEnv()
	require.NoError(t, setVar(env, "x=-3"))
	require.NoError(t, setVar(env, "a=1, 2,3"))
	assert.Equal(t, -3, env.Get("x"))
	a, ok := env.Array("a")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, a)

	assert.Error(t, setVar(env, "=1"))
	assert.Error(t, setVar(env, "x=one"))
	assert.Error(t, setVar(env, "a=1,two"))
}
