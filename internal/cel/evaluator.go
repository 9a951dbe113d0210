package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/tblx/internal/model"
)

// RowVariable is the name rows are bound to in expressions. "_" is bound to
// the same row.
const RowVariable = "row"

// Evaluator compiles and evaluates CEL expressions against rows.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a new CEL evaluator with standard library functions.
// Additional options extend the environment (e.g., custom functions).
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newRowEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Environment returns the CEL environment for introspection.
func (e *Evaluator) Environment() *cel.Env {
	return e.env
}

func newRowEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable(RowVariable, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("_", cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

func bindings(row model.Row) map[string]any {
	m := map[string]any(row)
	if m == nil {
		m = map[string]any{}
	}
	return map[string]any{RowVariable: m, "_": m}
}

// Evaluate evaluates expr against row and converts the result to Go types.
func (e *Evaluator) Evaluate(expr string, row model.Row) (any, error) {
	prg, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(bindings(row))
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(out), nil
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return prg, nil
}

// Predicate is a compiled boolean row expression.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile prepares expr for repeated evaluation. Expressions whose type is
// known not to be bool are rejected up front.
func (e *Evaluator) Compile(expr string) (*Predicate, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); out.Kind() != types.BoolKind && out.Kind() != types.DynKind {
		return nil, fmt.Errorf("expression %q yields %s, want bool", expr, out)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// Match evaluates the predicate against row.
func (p *Predicate) Match(row model.Row) (bool, error) {
	out, _, err := p.prg.Eval(bindings(row))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("expression %q yields %s, want bool", p.expr, out.Type().TypeName())
	}
	return bool(b), nil
}

// Where returns the rows for which p holds, in input order. A nil predicate
// keeps every row.
func Where(rows []model.Row, p *Predicate) ([]model.Row, error) {
	if p == nil {
		return rows, nil
	}
	out := make([]model.Row, 0, len(rows))
	for i, row := range rows {
		ok, err := p.Match(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// ToGo converts CEL types to Go native types recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	if lister, ok := val.(traits.Lister); ok {
		size, _ := lister.Size().(types.Int)
		result := make([]any, 0, int(size))
		for i := types.Int(0); i < size; i++ {
			result = append(result, ToGo(lister.Get(i)))
		}
		return result
	}
	if mapper, ok := val.(traits.Mapper); ok {
		result := map[string]any{}
		for it := mapper.Iterator(); it.HasNext() == types.True; {
			k := it.Next()
			result[fmt.Sprintf("%v", k.Value())] = ToGo(mapper.Get(k))
		}
		return result
	}
	return val.Value()
}
