// Command gotdop parses, prints and evaluates shell arithmetic.
//
//	gotdop [flags] parse EXPRESSION   print the canonical s-expression
//	gotdop [flags] tree EXPRESSION    print the full typed tree
//	gotdop [flags] eval EXPRESSION    print the s-expression and its value
//	gotdop [flags] repl               evaluate expressions interactively
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sandrolain/gotdop"
	"github.com/sandrolain/gotdop/pkg/arith"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gotdop", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := gotdop.DefaultConfig()
	cfg.RegisterFlags(fs)
	configFile := fs.String("config.file", "", "YAML configuration file. Flags given on the command line override it.")
	logLevel := fs.String("log.level", "info", "Only log messages with the given severity or above. Valid levels: debug, info, warn, error.")
	env := arith.NewEnv()
	fs.Func("var", "Set a variable, as name=value or name=v1,v2,... for an array. Repeatable.", func(s string) error {
		return setVar(env, s)
	})
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: gotdop [flags] parse|tree|eval EXPRESSION")
		fmt.Fprintln(stderr, "       gotdop [flags] repl")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	action := fs.Arg(0)
	if n := fs.NArg(); (action == "repl" && n != 1) || (action != "repl" && n != 2) {
		fs.Usage()
		return 2
	}

	logger, err := newLogger(stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}

	if *configFile != "" {
		fileCfg, err := gotdop.LoadConfig(*configFile)
		if err != nil {
			level.Error(logger).Log("msg", "loading config", "err", err)
			return 1
		}
		cfg = overrideFromFlags(fs, fileCfg, cfg)
	}

	reg := prometheus.NewRegistry()
	c, err := gotdop.New(cfg, logger, reg)
	if err != nil {
		level.Error(logger).Log("msg", "creating compiler", "err", err)
		return 1
	}

	if action == "repl" {
		return runREPL(c, env, reg, stdout)
	}

	src := fs.Arg(1)
	expr, err := c.Compile(src)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing %q: %v\n", src, err)
		return 1
	}

	switch action {
	case "parse":
		fmt.Fprintln(stdout, expr)
	case "tree":
		if err := c.Format(stdout, expr); err != nil {
			level.Error(logger).Log("msg", "printing tree", "err", err)
			return 1
		}
	case "eval":
		v, err := c.Eval(context.Background(), src, env)
		if err != nil {
			fmt.Fprintf(stderr, "Error evaluating %s: %v\n", expr, err)
			return 1
		}
		fmt.Fprintf(stdout, "%s  =>  %d\n", expr, v)
	default:
		fmt.Fprintf(stderr, "Invalid action %q\n", action)
		return 2
	}
	return 0
}

// overrideFromFlags starts from the file configuration and applies the flags
// set explicitly on the command line.
func overrideFromFlags(fs *flag.FlagSet, fileCfg, flagCfg gotdop.Config) gotdop.Config {
	cfg := fileCfg
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cache-size":
			cfg.CacheSize = flagCfg.CacheSize
		case "max-columns":
			cfg.MaxColumns = flagCfg.MaxColumns
		case "color":
			cfg.Color = flagCfg.Color
		case "max-eval-depth":
			cfg.MaxDepth = flagCfg.MaxDepth
		case "eval-timeout":
			cfg.EvalTimeout = flagCfg.EvalTimeout
		}
	})
	return cfg
}

func setVar(env *arith.Env, s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return errors.Errorf("expected name=value, got %q", s)
	}
	if !strings.Contains(value, ",") {
		v, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "variable %s", name)
		}
		env.Set(name, v)
		return nil
	}

	var values []int
	for _, part := range strings.Split(value, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return errors.Wrapf(err, "array %s", name)
		}
		values = append(values, v)
	}
	env.SetArray(name, values)
	return nil
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, errors.Errorf("invalid log level %q, expected one of debug, info, warn, error", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return level.NewFilter(logger, opt), nil
}
