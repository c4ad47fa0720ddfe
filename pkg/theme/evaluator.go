package theme

import (
	"errors"
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// Evaluator evaluates a theme expression against an environment.
type Evaluator interface {
	Evaluate(expression string, env Env) (any, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(expression string, env Env) (any, error)

// Evaluate calls f(expression, env).
func (f EvaluatorFunc) Evaluate(expression string, env Env) (any, error) {
	return f(expression, env)
}

// EvaluationError captures the failing expression alongside its cause.
type EvaluationError struct {
	Expr string
	Err  error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("theme: evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapEvaluationError(expression string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Expr == "" {
			evalErr.Expr = expression
		}
		return evalErr
	}
	return &EvaluationError{Expr: expression, Err: err}
}

// ExprEvaluator evaluates expressions with github.com/expr-lang/expr.
// Compiled programs are cached per expression; it is safe for concurrent
// use.
type ExprEvaluator struct {
	programs sync.Map // string -> *exprvm.Program
}

// NewExprEvaluator constructs an ExprEvaluator.
func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{}
}

// Evaluate compiles (once) and runs expression against env.
func (e *ExprEvaluator) Evaluate(expression string, env Env) (any, error) {
	if expression == "" {
		return nil, &EvaluationError{Err: errors.New("expression must not be empty")}
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = Env{}
	}
	result, err := exprlang.Run(program, map[string]any(env))
	if err != nil {
		return nil, &EvaluationError{Expr: expression, Err: err}
	}
	return result, nil
}

func (e *ExprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	if cached, ok := e.programs.Load(expression); ok {
		return cached.(*exprvm.Program), nil
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &EvaluationError{Expr: expression, Err: err}
	}
	e.programs.Store(expression, program)
	return program, nil
}
