package agent

import (
	"fmt"
	"strings"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/memory"
)

const promptTemplate = `Answer the question below. You have access to these tools:

%s

If the question requires information that might be found in documents (like CVs, project descriptions, technical data, or general knowledge stored in documents), always consider using the document_search tool. It is your primary tool for retrieving factual information from stored documents.

Use the following format exactly:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Previous conversation history:
%s

Begin!

Question: %s
Thought: %s`

func renderPrompt(tools registry, history []memory.Turn, question, scratchpad string) string {
	return fmt.Sprintf(promptTemplate,
		tools.descriptions(),
		tools.names(),
		renderHistory(history),
		question,
		scratchpad,
	)
}

func renderHistory(history []memory.Turn) string {
	if len(history) == 0 {
		return "(none)"
	}

	var sb strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&sb, "Human: %s\nAI: %s\n", turn.Input, turn.Output)
	}
	return strings.TrimRight(sb.String(), "\n")
}
