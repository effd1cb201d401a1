package arith

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/sandrolain/gotdop/pkg/token"
	"github.com/sandrolain/gotdop/pkg/types"
)

// Func implements a function callable from an expression.
type Func func(ctx context.Context, args []int) (int, error)

// FunctionDef describes a callable function.
type FunctionDef struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for unlimited
	Impl    Func
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits the nesting depth of evaluated nodes. 0 disables the limit.
	MaxDepth int
	// MaxArrayLength bounds the length arrays grow to on assignment.
	MaxArrayLength int
	// Timeout bounds a single Eval call. 0 disables it.
	Timeout time.Duration
	// Logger for structured logging.
	Logger log.Logger
	// Functions holds user-defined functions, in addition to the builtins.
	Functions []FunctionDef
}

// EvalOption configures an Evaluator.
type EvalOption func(*EvalOptions)

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// DefaultMaxArrayLength is the array length limit of a new Evaluator.
const DefaultMaxArrayLength = 1 << 20

// WithMaxArrayLength sets the length arrays may grow to when an element past
// their end is assigned. Non-positive values select DefaultMaxArrayLength.
func WithMaxArrayLength(n int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxArrayLength = n
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithFunction registers a function. maxArgs of -1 accepts any number of
// arguments. A function named like a builtin replaces it.
func WithFunction(name string, minArgs, maxArgs int, fn Func) EvalOption {
	return func(opts *EvalOptions) {
		opts.Functions = append(opts.Functions, FunctionDef{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Impl: fn})
	}
}

// Evaluator computes the integer value of expressions with the semantics of
// C and shell arithmetic. It holds no per-evaluation state and is safe for
// concurrent use, as long as each goroutine passes its own Env.
type Evaluator struct {
	opts   EvalOptions
	logger log.Logger
	funcs  map[string]*FunctionDef
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: 10000,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxArrayLength <= 0 {
		options.MaxArrayLength = DefaultMaxArrayLength
	}
	if options.Logger == nil {
		options.Logger = log.NewNopLogger()
	}

	funcs := make(map[string]*FunctionDef, len(builtins)+len(options.Functions))
	for i := range builtins {
		funcs[builtins[i].Name] = &builtins[i]
	}
	for i := range options.Functions {
		fd := options.Functions[i]
		funcs[fd.Name] = &fd
	}

	return &Evaluator{opts: options, logger: options.Logger, funcs: funcs}
}

// Eval evaluates e in env. Assignments and increments update env.
func (ev *Evaluator) Eval(ctx context.Context, e Expr, env *Env) (int, error) {
	if e == nil {
		return 0, types.NewError(types.ErrFieldUnassigned, "nil expression")
	}
	if env == nil {
		return 0, types.NewError(types.ErrFieldUnassigned, "nil environment")
	}
	if ev.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ev.opts.Timeout)
		defer cancel()
	}

	s := &evalState{ev: ev, ctx: ctx, env: env}
	v, err := s.eval(e)
	if err != nil {
		level.Debug(ev.logger).Log("msg", "evaluation failed", "expr", e, "err", err)
		return 0, err
	}
	return v, nil
}

type evalState struct {
	ev    *Evaluator
	ctx   context.Context
	env   *Env
	depth int
}

func (s *evalState) eval(e Expr) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, errors.Wrap(err, "evaluation cancelled")
	}
	s.depth++
	defer func() { s.depth-- }()
	if s.ev.opts.MaxDepth > 0 && s.depth > s.ev.opts.MaxDepth {
		return 0, types.Errorf(types.ErrDepthExceeded, "expression nested deeper than %d", s.ev.opts.MaxDepth)
	}

	switch n := e.(type) {
	case *Const:
		return n.I, nil

	case *Var:
		return s.env.Get(n.Name), nil

	case *Unary:
		return s.evalUnary(n)

	case *Binary:
		return s.evalBinary(n)

	case *Assign:
		return s.evalAssign(n)

	case *Ternary:
		cond, err := s.eval(n.Cond)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return s.eval(n.Then)
		}
		return s.eval(n.Else)

	case *FuncCall:
		return s.evalCall(n)

	case *Index:
		name, i, err := s.element(n)
		if err != nil {
			return 0, err
		}
		a, _ := s.env.array(name)
		return a[i], nil

	case *Slice:
		return 0, types.Errorf(types.ErrSliceValue, "%s is not a number; slices are only valid as function arguments", n)

	case *Comma:
		var last int
		for _, c := range n.Children {
			v, err := s.eval(c)
			if err != nil {
				return 0, err
			}
			last = v
		}
		return last, nil
	}
	return 0, types.Errorf(types.ErrFieldType, "unknown node %T", e)
}

func (s *evalState) evalUnary(n *Unary) (int, error) {
	switch n.Op {
	case token.DPlus, token.DMinus, token.PostIncrement, token.PostDecrement:
		old, err := s.eval(n.Child)
		if err != nil {
			return 0, err
		}
		v := old + 1
		if n.Op == token.DMinus || n.Op == token.PostDecrement {
			v = old - 1
		}
		if err := s.store(n.Child, v); err != nil {
			return 0, err
		}
		if n.Op == token.PostIncrement || n.Op == token.PostDecrement {
			return old, nil
		}
		return v, nil
	}

	x, err := s.eval(n.Child)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case token.Plus:
		return x, nil
	case token.Minus:
		return -x, nil
	case token.Bang:
		return boolInt(x == 0), nil
	case token.Tilde:
		return ^x, nil
	}
	return 0, types.Errorf(types.ErrFieldType, "%s is not a unary operator", n.Op)
}

func (s *evalState) evalBinary(n *Binary) (int, error) {
	left, err := s.eval(n.Left)
	if err != nil {
		return 0, err
	}

	// Short circuit
	switch n.Op {
	case token.DAmp:
		if left == 0 {
			return 0, nil
		}
		right, err := s.eval(n.Right)
		return boolInt(right != 0), err
	case token.DPipe:
		if left != 0 {
			return 1, nil
		}
		right, err := s.eval(n.Right)
		return boolInt(right != 0), err
	}

	right, err := s.eval(n.Right)
	if err != nil {
		return 0, err
	}
	return apply(n.Op, left, right)
}

func (s *evalState) evalAssign(n *Assign) (int, error) {
	value, err := s.eval(n.Value)
	if err != nil {
		return 0, err
	}
	if n.Op != token.Equal {
		old, err := s.eval(n.Target)
		if err != nil {
			return 0, err
		}
		if value, err = apply(compoundOps[n.Op], old, value); err != nil {
			return 0, err
		}
	}
	if err := s.store(n.Target, value); err != nil {
		return 0, err
	}
	return value, nil
}

// compoundOps maps compound assignments to their binary operator.
var compoundOps = map[token.Kind]token.Kind{
	token.PlusEqual:    token.Plus,
	token.MinusEqual:   token.Minus,
	token.StarEqual:    token.Star,
	token.SlashEqual:   token.Slash,
	token.PercentEqual: token.Percent,
	token.DLessEqual:   token.DLess,
	token.DGreatEqual:  token.DGreat,
	token.AmpEqual:     token.Amp,
	token.CaretEqual:   token.Caret,
	token.PipeEqual:    token.Pipe,
}

// store assigns v to an lvalue.
func (s *evalState) store(target Expr, v int) error {
	switch t := target.(type) {
	case *Var:
		s.env.Set(t.Name, v)
		return nil
	case *Index:
		name, ok := t.Array.(*Var)
		if !ok {
			return types.Errorf(types.ErrNotAnArray, "%s is not an array", t.Array)
		}
		i, err := s.eval(t.Index)
		if err != nil {
			return err
		}
		if !s.env.setElement(name.Name, i, v, s.ev.opts.MaxArrayLength) {
			return types.Errorf(types.ErrIndexOutOfRange, "index %d out of range for %s (maximum length %d)",
				i, name.Name, s.ev.opts.MaxArrayLength)
		}
		return nil
	}
	return types.Errorf(types.ErrInvalidLvalue, "Can't assign to %s", target)
}

// element resolves array[index] to an array name and an in-range position.
func (s *evalState) element(n *Index) (string, int, error) {
	v, ok := n.Array.(*Var)
	if !ok {
		return "", 0, types.Errorf(types.ErrNotAnArray, "%s is not an array", n.Array)
	}
	a, ok := s.env.array(v.Name)
	if !ok {
		return "", 0, types.Errorf(types.ErrNotAnArray, "%s is not an array", v.Name)
	}
	i, err := s.eval(n.Index)
	if err != nil {
		return "", 0, err
	}
	j := i
	if j < 0 {
		j += len(a)
	}
	if j < 0 || j >= len(a) {
		return "", 0, types.Errorf(types.ErrIndexOutOfRange, "index %d out of range for %s (length %d)", i, v.Name, len(a))
	}
	return v.Name, j, nil
}

// slice returns the elements of array[begin:end]; a missing end means the
// end of the array. Bounds are clamped.
func (s *evalState) slice(n *Slice) ([]int, error) {
	v, ok := n.Array.(*Var)
	if !ok {
		return nil, types.Errorf(types.ErrNotAnArray, "%s is not an array", n.Array)
	}
	a, ok := s.env.array(v.Name)
	if !ok {
		return nil, types.Errorf(types.ErrNotAnArray, "%s is not an array", v.Name)
	}
	begin, err := s.eval(n.Begin)
	if err != nil {
		return nil, err
	}
	end := len(a)
	if n.End != nil {
		if end, err = s.eval(n.End); err != nil {
			return nil, err
		}
	}
	begin, end = clamp(begin, len(a)), clamp(end, len(a))
	if begin >= end {
		return nil, nil
	}
	return a[begin:end], nil
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

func (s *evalState) evalCall(n *FuncCall) (int, error) {
	fd, ok := s.ev.funcs[n.Name]
	if !ok {
		return 0, types.Errorf(types.ErrUndefinedFunction, "function %s is not defined", n.Name)
	}

	var args []int
	for _, arg := range n.Args {
		if sl, ok := arg.(*Slice); ok {
			elems, err := s.slice(sl)
			if err != nil {
				return 0, err
			}
			args = append(args, elems...)
			continue
		}
		v, err := s.eval(arg)
		if err != nil {
			return 0, err
		}
		args = append(args, v)
	}

	if len(args) < fd.MinArgs || (fd.MaxArgs >= 0 && len(args) > fd.MaxArgs) {
		return 0, types.Errorf(types.ErrArgumentCount, "%s takes %s, got %d", n.Name, arity(fd), len(args))
	}
	return fd.Impl(s.ctx, args)
}
