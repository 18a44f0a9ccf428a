package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Registry manages the CEL environment trigger conditions are compiled in.
type Registry struct {
	env *cel.Env
}

// NewRegistry initializes the CEL environment with the combat variables a
// trigger condition may reference.
func NewRegistry() (*Registry, error) {
	env, err := cel.NewEnv(
		cel.Variable("round", cel.IntType),
		cel.Variable("turn", cel.IntType),
		cel.Variable("actor", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("effects", cel.ListType(cel.StringType)),
		cel.Variable("participants", cel.ListType(cel.MapType(cel.StringType, cel.AnyType))),
	)
	if err != nil {
		return nil, err
	}
	return &Registry{env: env}, nil
}

// EvalBool compiles and evaluates a condition expression against the
// provided context. Non-boolean results are rejected rather than coerced.
func (r *Registry) EvalBool(expression string, context map[string]any) (bool, error) {
	ast, iss := r.env.Compile(expression)
	if iss.Err() != nil {
		return false, iss.Err()
	}
	prog, err := r.env.Program(ast)
	if err != nil {
		return false, err
	}
	out, _, err := prog.Eval(context)
	if err != nil {
		return false, err
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %T, expected bool", expression, out.Value())
	}
	return result, nil
}
