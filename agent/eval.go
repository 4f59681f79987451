package agent

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
	"strings"
)

// EvalTool returns the sandboxed expression-evaluation tool. Input is
// parsed as a Go expression and folded arithmetically; nothing is ever
// executed, so there is no escape from the sandbox.
func EvalTool() Tool {
	return Tool{
		Name:        "expression_eval",
		Description: "Evaluate arithmetic expressions for calculations. Input should be a plain arithmetic expression such as (1500 * 0.25) + 40.",
		Invoke: func(_ context.Context, input string) (Result, error) {
			value, err := evalExpression(input)
			if err != nil {
				return Result{}, err
			}
			return Result{Output: formatNumber(value)}, nil
		},
	}
}

func evalExpression(input string) (float64, error) {
	expr, err := parser.ParseExpr(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("parse expression: %w", err)
	}
	return evalNode(expr)
}

func evalNode(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		switch n.Kind {
		case token.INT, token.FLOAT:
			return strconv.ParseFloat(n.Value, 64)
		default:
			return 0, fmt.Errorf("unsupported literal %s", n.Value)
		}
	case *ast.ParenExpr:
		return evalNode(n.X)
	case *ast.UnaryExpr:
		value, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.SUB:
			return -value, nil
		case token.ADD:
			return value, nil
		default:
			return 0, fmt.Errorf("unsupported unary operator %s", n.Op)
		}
	case *ast.BinaryExpr:
		left, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		right, err := evalNode(n.Y)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return left + right, nil
		case token.SUB:
			return left - right, nil
		case token.MUL:
			return left * right, nil
		case token.QUO:
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return left / right, nil
		case token.REM:
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return math.Mod(left, right), nil
		default:
			return 0, fmt.Errorf("unsupported operator %s", n.Op)
		}
	default:
		return 0, fmt.Errorf("unsupported expression")
	}
}

func formatNumber(value float64) string {
	if value == math.Trunc(value) && math.Abs(value) < 1e15 {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}
