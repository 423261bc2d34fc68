// Package auth decides authorization policy outcomes.
package auth

import (
	"strconv"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/common/apperrors"
	"github.com/tansive/conductor/internal/score/expr"
)

var ErrEvaluation = apperrors.New("unable to evaluate policy")

var (
	ErrUnboundIdentifier = ErrEvaluation.New("unbound identifier")
	ErrUnknownFunction   = ErrEvaluation.New("unknown function")
	ErrTypeMismatch      = ErrEvaluation.New("type mismatch")
	ErrDivisionByZero    = ErrEvaluation.New("division by zero")
)

// Evaluator decides whether an authorization policy permits a request.
type Evaluator interface {
	Evaluate(policy *catalog.AuthorizationPolicy) bool
}

// ConstantEvaluator folds a policy expression over its literals. A policy
// is permitted only when the expression folds to TRUE; anything else,
// including NULL, a non boolean value or a reference to an identifier or
// function, denies.
type ConstantEvaluator struct{}

var _ Evaluator = ConstantEvaluator{}

func (ConstantEvaluator) Evaluate(policy *catalog.AuthorizationPolicy) bool {
	if policy == nil || policy.PermissiveExpr.IsZero() {
		return false
	}
	v, err := Fold(policy.PermissiveExpr.Root)
	if err != nil {
		return false
	}
	return v.Kind == KindBool && v.Bool
}

type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "null"
}

type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	String string
}

func (v Value) Text() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindString:
		return "'" + v.String + "'"
	}
	return "NULL"
}

var null = Value{Kind: KindNull}

func boolean(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Fold reduces an expression made only of literals to a single value.
// Comparisons and logic follow SQL three valued semantics.
func Fold(n expr.Node) (Value, error) {
	switch n := n.(type) {
	case *expr.Literal:
		switch n.Kind {
		case expr.LiteralBool:
			return boolean(n.Value == "true"), nil
		case expr.LiteralNumber:
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return null, ErrTypeMismatch.MsgErr("invalid number "+n.Value, err)
			}
			return Value{Kind: KindNumber, Number: f}, nil
		case expr.LiteralString:
			return Value{Kind: KindString, String: n.Value}, nil
		}
		return null, nil

	case *expr.Ident:
		return null, ErrUnboundIdentifier.Msgf("identifier %s is not bound", n)

	case *expr.Call:
		return null, ErrUnknownFunction.Msgf("function %s is not supported", n.Name)

	case *expr.IsNull:
		x, err := Fold(n.X)
		if err != nil {
			return null, err
		}
		return boolean((x.Kind == KindNull) != n.Not), nil

	case *expr.Unary:
		x, err := Fold(n.X)
		if err != nil {
			return null, err
		}
		if x.Kind == KindNull {
			return null, nil
		}
		if n.Op == "NOT" {
			if x.Kind != KindBool {
				return null, ErrTypeMismatch.Msgf("NOT expects a boolean, got %s", x.Kind)
			}
			return boolean(!x.Bool), nil
		}
		if x.Kind != KindNumber {
			return null, ErrTypeMismatch.Msgf("unary %s expects a number, got %s", n.Op, x.Kind)
		}
		return Value{Kind: KindNumber, Number: -x.Number}, nil

	case *expr.Binary:
		l, err := Fold(n.Left)
		if err != nil {
			return null, err
		}
		r, err := Fold(n.Right)
		if err != nil {
			return null, err
		}
		switch n.Op {
		case "AND", "OR":
			return logic(n.Op, l, r)
		case "=", "<>", "<", "<=", ">", ">=":
			return compare(n.Op, l, r)
		default:
			return arithmetic(n.Op, l, r)
		}
	}
	return null, ErrEvaluation.Msgf("unsupported expression %T", n)
}

func logic(op string, l, r Value) (Value, error) {
	for _, v := range []Value{l, r} {
		if v.Kind != KindBool && v.Kind != KindNull {
			return null, ErrTypeMismatch.Msgf("%s expects booleans, got %s", op, v.Kind)
		}
	}
	// the dominant value decides regardless of NULL
	dominant := op == "OR"
	if (l.Kind == KindBool && l.Bool == dominant) || (r.Kind == KindBool && r.Bool == dominant) {
		return boolean(dominant), nil
	}
	if l.Kind == KindNull || r.Kind == KindNull {
		return null, nil
	}
	return boolean(!dominant), nil
}

func compare(op string, l, r Value) (Value, error) {
	if l.Kind == KindNull || r.Kind == KindNull {
		return null, nil
	}
	if l.Kind != r.Kind {
		return null, ErrTypeMismatch.Msgf("cannot compare %s with %s", l.Kind, r.Kind)
	}
	var c int
	switch l.Kind {
	case KindBool:
		if op != "=" && op != "<>" {
			return null, ErrTypeMismatch.Msgf("booleans do not support %s", op)
		}
		if l.Bool != r.Bool {
			c = 1
		}
	case KindNumber:
		c = cmp3(l.Number < r.Number, l.Number > r.Number)
	case KindString:
		c = cmp3(l.String < r.String, l.String > r.String)
	}
	switch op {
	case "=":
		return boolean(c == 0), nil
	case "<>":
		return boolean(c != 0), nil
	case "<":
		return boolean(c < 0), nil
	case "<=":
		return boolean(c <= 0), nil
	case ">":
		return boolean(c > 0), nil
	}
	return boolean(c >= 0), nil
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func arithmetic(op string, l, r Value) (Value, error) {
	if l.Kind == KindNull || r.Kind == KindNull {
		return null, nil
	}
	if l.Kind != KindNumber || r.Kind != KindNumber {
		return null, ErrTypeMismatch.Msgf("%s expects numbers, got %s and %s", op, l.Kind, r.Kind)
	}
	var out float64
	switch op {
	case "+":
		out = l.Number + r.Number
	case "-":
		out = l.Number - r.Number
	case "*":
		out = l.Number * r.Number
	case "/":
		if r.Number == 0 {
			return null, ErrDivisionByZero
		}
		out = l.Number / r.Number
	case "%":
		if int64(r.Number) == 0 {
			return null, ErrDivisionByZero
		}
		out = float64(int64(l.Number) % int64(r.Number))
	default:
		return null, ErrEvaluation.Msgf("unknown operator %s", op)
	}
	return Value{Kind: KindNumber, Number: out}, nil
}
