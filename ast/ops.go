package ast

import "fmt"

func execBinaryOp(n *BinaryOp, ctx *Context) (interface{}, Signal, error) {
	// && and || short-circuit: the right operand is only evaluated if
	// the left one didn't already decide the result.
	if n.Op == "&&" || n.Op == "||" {
		l, sig, err := Execute(n.Left, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		if n.Op == "&&" && !truthy(l) {
			return false, SignalNone, nil
		}
		if n.Op == "||" && truthy(l) {
			return true, SignalNone, nil
		}
		r, sig, err := Execute(n.Right, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		return truthy(r), SignalNone, nil
	}
	l, sig, err := Execute(n.Left, ctx)
	if err != nil || sig != SignalNone {
		return nil, sig, err
	}
	r, sig, err := Execute(n.Right, ctx)
	if err != nil || sig != SignalNone {
		return nil, sig, err
	}
	v, err := applyBinaryOp(n.Op, l, r)
	return v, SignalNone, err
}

func execUnaryOp(n *UnaryOp, ctx *Context) (interface{}, Signal, error) {
	v, sig, err := Execute(n.Operand, ctx)
	if err != nil || sig != SignalNone {
		return nil, sig, err
	}
	switch n.Op {
	case "-":
		switch t := v.(type) {
		case int:
			return -t, SignalNone, nil
		case float64:
			return -t, SignalNone, nil
		}
		return nil, SignalNone, fmt.Errorf("ast: unary - on non-numeric value %v", v)
	case "!":
		return !truthy(v), SignalNone, nil
	default:
		return nil, SignalNone, fmt.Errorf("ast: unknown unary operator %q", n.Op)
	}
}

func applyBinaryOp(op string, l, r interface{}) (interface{}, error) {
	switch op {
	case "+", "-", "*", "/":
		return arith(op, l, r)
	case "==":
		return l == r, nil
	case "!=":
		return l != r, nil
	case "<", "<=", ">", ">=":
		return compare(op, l, r)
	default:
		return nil, fmt.Errorf("ast: unknown binary operator %q", op)
	}
}

// arith promotes to float64 only when either operand is already a
// float64; two ints stay ints (so "/" is integer division on ints,
// matching the host language's numeric literal grammar where an
// unadorned digit run is an int and one with a decimal point is a
// float).
func arith(op string, l, r interface{}) (interface{}, error) {
	li, lIsInt := l.(int)
	ri, rIsInt := r.(int)
	if lIsInt && rIsInt {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, fmt.Errorf("ast: division by zero")
			}
			return li / ri, nil
		}
	}
	lf, err := toFloat(l)
	if err != nil {
		return nil, err
	}
	rf, err := toFloat(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("ast: division by zero")
		}
		return lf / rf, nil
	}
	return nil, fmt.Errorf("ast: unknown arithmetic operator %q", op)
}

func compare(op string, l, r interface{}) (interface{}, error) {
	lf, err := toFloat(l)
	if err != nil {
		return nil, err
	}
	rf, err := toFloat(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	}
	return nil, fmt.Errorf("ast: unknown comparison operator %q", op)
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case float64:
		return t, nil
	default:
		return 0, fmt.Errorf("ast: value %v is not numeric", v)
	}
}
