package agent

import (
	"context"
	"testing"
)

func TestEvalToolArithmetic(t *testing.T) {
	tool := EvalTool()

	cases := []struct {
		input string
		want  string
	}{
		{"2 + 3", "5"},
		{"(1500 * 0.25) + 40", "415"},
		{"10 / 4", "2.5"},
		{"-7 + 2", "-5"},
		{"17 % 5", "2"},
	}

	for _, tc := range cases {
		result, err := tool.Invoke(context.Background(), tc.input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.input, err)
		}
		if result.Output != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.input, tc.want, result.Output)
		}
	}
}

func TestEvalToolRejectsDivisionByZero(t *testing.T) {
	tool := EvalTool()
	if _, err := tool.Invoke(context.Background(), "1 / 0"); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestEvalToolRejectsIdentifiers(t *testing.T) {
	tool := EvalTool()
	if _, err := tool.Invoke(context.Background(), "os.Exit(1)"); err == nil {
		t.Fatal("expected function calls to be rejected")
	}
	if _, err := tool.Invoke(context.Background(), "x + 1"); err == nil {
		t.Fatal("expected identifiers to be rejected")
	}
}

func TestEvalToolRejectsGarbage(t *testing.T) {
	tool := EvalTool()
	if _, err := tool.Invoke(context.Background(), "not math at all"); err == nil {
		t.Fatal("expected a parse error")
	}
}
