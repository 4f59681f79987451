package agent

import (
	"errors"
	"regexp"
	"strings"
)

// decision is the parsed form of one model response: either a final
// answer or an action with its input.
type decision struct {
	thought     string
	action      string
	actionInput string
	finalAnswer string
	isFinal     bool
}

var (
	errMalformed = errors.New("agent: response matches neither an action nor a final answer")

	actionPattern = regexp.MustCompile(`(?s)Action\s*:\s*(.*?)\s*Action\s*Input\s*:\s*(.*)`)
)

// parseDecision interprets the model's text per the
// Thought/Action/Action Input/Final Answer protocol. A response carrying
// both an action and a final answer is treated as final, matching how the
// protocol terminates.
func parseDecision(output string) (decision, error) {
	d := decision{thought: extractThought(output)}

	if idx := strings.LastIndex(output, "Final Answer:"); idx != -1 {
		d.isFinal = true
		d.finalAnswer = strings.TrimSpace(output[idx+len("Final Answer:"):])
		return d, nil
	}

	match := actionPattern.FindStringSubmatch(output)
	if match == nil {
		return d, errMalformed
	}

	d.action = strings.TrimSpace(firstLine(match[1]))
	d.actionInput = strings.TrimSpace(firstLine(match[2]))
	if d.action == "" {
		return d, errMalformed
	}
	return d, nil
}

func extractThought(output string) string {
	idx := strings.Index(output, "Thought:")
	if idx == -1 {
		// Models often omit the label on the first line.
		return strings.TrimSpace(firstLine(output))
	}
	rest := output[idx+len("Thought:"):]
	for _, stop := range []string{"Action:", "Final Answer:"} {
		if cut := strings.Index(rest, stop); cut != -1 {
			rest = rest[:cut]
		}
	}
	return strings.TrimSpace(rest)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return s[:idx]
	}
	return s
}
