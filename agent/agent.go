// Package agent implements the ReAct reasoning loop that interleaves
// model thoughts with tool invocations.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/llm"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/memory"
)

type Status string

const (
	// StatusDone means the model produced a final answer.
	StatusDone Status = "done"
	// StatusAborted means the loop stopped early (budget exhausted or a
	// terminal tool error) and returned a best-effort answer.
	StatusAborted Status = "aborted"
)

const (
	defaultMaxSteps    = 5
	defaultToolTimeout = 30 * time.Second

	fallbackAnswer = "Agent stopped due to iteration limit or time limit."
)

// Step records one completed reasoning iteration.
type Step struct {
	Thought     string
	Action      string
	ActionInput string
	Observation string
}

// Outcome is the terminal result of one loop execution. Both statuses
// carry a usable answer string. Sources holds the citations from the most
// recent tool result that produced any.
type Outcome struct {
	Answer  string
	Status  Status
	Steps   []Step
	Sources []string
}

type Loop struct {
	client      llm.Client
	maxSteps    int
	toolTimeout time.Duration
	logger      *log.Logger
}

func New(client llm.Client, maxSteps int, logger *log.Logger) *Loop {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		client:      client,
		maxSteps:    maxSteps,
		toolTimeout: defaultToolTimeout,
		logger:      logger,
	}
}

// WithToolTimeout overrides the per-invocation wall-clock timeout.
func (l *Loop) WithToolTimeout(timeout time.Duration) *Loop {
	if timeout > 0 {
		l.toolTimeout = timeout
	}
	return l
}

// Run executes the loop to termination. All per-execution state (trace,
// scratchpad, sources) is local to this call so concurrent query turns
// never interfere. An error is returned only for reasoning-model
// transport failures; every other condition terminates with an Outcome.
func (l *Loop) Run(ctx context.Context, question string, tools []Tool, history []memory.Turn) (Outcome, error) {
	reg := newRegistry(tools)

	var (
		steps       []Step
		sources     []string
		scratchpad  strings.Builder
		lastThought string
	)

	for step := 0; step < l.maxSteps; step++ {
		var d decision
		parseErr := errMalformed

		// One in-loop recovery per step: a malformed response is fed
		// back as a corrective observation before the step is charged
		// against the budget.
		for attempt := 0; attempt < 2 && parseErr != nil; attempt++ {
			prompt := renderPrompt(reg, history, question, scratchpad.String())
			output, err := l.client.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
			if err != nil {
				return Outcome{}, fmt.Errorf("agent reasoning: %w", err)
			}

			d, parseErr = parseDecision(output)
			if parseErr != nil {
				l.logger.Printf("malformed agent response at step %d, feeding back correction", step+1)
				fmt.Fprintf(&scratchpad, "%s\nObservation: Invalid format. Provide either an Action with an Action Input, or a Final Answer.\nThought: ", strings.TrimSpace(output))
			}
		}
		if parseErr != nil {
			steps = append(steps, Step{Thought: d.thought, Observation: "response could not be parsed"})
			continue
		}

		if d.thought != "" {
			lastThought = d.thought
		}

		if d.isFinal {
			steps = append(steps, Step{Thought: d.thought})
			return Outcome{Answer: d.finalAnswer, Status: StatusDone, Steps: steps, Sources: sources}, nil
		}

		tool, ok := reg.lookup(d.action)
		if !ok {
			observation := fmt.Sprintf("unknown tool %q, available tools: %s", d.action, reg.names())
			steps = append(steps, Step{Thought: d.thought, Action: d.action, ActionInput: d.actionInput, Observation: observation})
			return Outcome{Answer: l.bestEffort(lastThought), Status: StatusAborted, Steps: steps, Sources: sources}, nil
		}

		observation, toolSources := l.invoke(ctx, tool, d.actionInput)
		if toolSources != nil {
			sources = toolSources
		}

		steps = append(steps, Step{Thought: d.thought, Action: d.action, ActionInput: d.actionInput, Observation: observation})
		fmt.Fprintf(&scratchpad, "%s\nAction: %s\nAction Input: %s\nObservation: %s\nThought: ", d.thought, d.action, d.actionInput, observation)
	}

	return Outcome{Answer: l.bestEffort(lastThought), Status: StatusAborted, Steps: steps, Sources: sources}, nil
}

func (l *Loop) invoke(ctx context.Context, tool Tool, input string) (string, []string) {
	ctx, cancel := context.WithTimeout(ctx, l.toolTimeout)
	defer cancel()

	result, err := tool.Invoke(ctx, input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	return result.Output, result.Sources
}

func (l *Loop) bestEffort(lastThought string) string {
	if strings.TrimSpace(lastThought) != "" {
		return lastThought
	}
	return fallbackAnswer
}
