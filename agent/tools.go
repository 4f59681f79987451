package agent

import (
	"context"
	"fmt"
	"strings"
)

// Result carries a tool's observation text plus an explicit slot for the
// source citations a retrieval tool produced. Sources travel on the result
// instead of shared state so concurrent query turns stay independent.
type Result struct {
	Output  string
	Sources []string
}

// Tool is a named string-in/string-out capability offered to the loop.
type Tool struct {
	Name        string
	Description string
	Invoke      func(ctx context.Context, input string) (Result, error)
}

type registry struct {
	tools  []Tool
	byName map[string]Tool
}

func newRegistry(tools []Tool) registry {
	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}
	return registry{tools: tools, byName: byName}
}

func (r registry) lookup(name string) (Tool, bool) {
	tool, ok := r.byName[strings.TrimSpace(name)]
	return tool, ok
}

func (r registry) names() string {
	names := make([]string, len(r.tools))
	for i, tool := range r.tools {
		names[i] = tool.Name
	}
	return strings.Join(names, ", ")
}

func (r registry) descriptions() string {
	var sb strings.Builder
	for _, tool := range r.tools {
		fmt.Fprintf(&sb, "%s: %s\n", tool.Name, tool.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
