package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/ai"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
)

// noTemporalInfoPlaceholder is rendered for context items whose
// metadata carries no datetime value. The field is never omitted.
const noTemporalInfoPlaceholder = "No temporal information found for this memory"

const synthesisSystemPrompt = "You are a helpful assistant that generates actions to take based on a new piece of data. You will be given a piece of data and a list of relevant memories from a knowledge base about the user. You will need to generate a list of actions to take based on the data and the results, inferring things which could be helpful to the user. Use the results to help inform your suggestions and make inferences about what might be in the user's best interest.\n\nRespond with a JSON object of the shape {\"actions\": [...], \"relatedMemories\": [string]}. Each action is one of:\n- {\"type\": \"suggestion\", \"suggestion\": string}: a suggestion for the user to do something.\n- {\"type\": \"reminder\", \"content\": string, \"time\": string}: a reminder, with the time at which it should be shown in ISO 8601 format.\n- {\"type\": \"add_to_goals\", \"goal\": string}: a new goal for the user to strive for.\nNo other action type is allowed. relatedMemories holds the IDs of the memories most relevant to the new data, including all used to take the actions."

// Synthesizer derives follow-up actions from a new record and its
// retrieved context.
type Synthesizer struct {
	llm ai.LLMService
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(llm ai.LLMService) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// contextItem is the serialized rendering of one retrieved memory
// inside the synthesis prompt.
type contextItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

// Synthesize produces the structured action list for a record given its
// retrieved context. An empty context set is valid, as is a result with
// zero actions.
func (s *Synthesizer) Synthesize(ctx context.Context, rec record.Record, results []supermemory.Result) (*record.SynthesisResult, error) {
	items := make([]contextItem, 0, len(results))
	for _, r := range results {
		timeText := noTemporalInfoPlaceholder
		if dt, ok := r.Datetime(); ok {
			timeText = dt.Format(time.RFC3339)
		}
		items = append(items, contextItem{
			ID:      r.ID,
			Title:   r.Title,
			Summary: r.Summary,
			Content: strings.Join(r.Chunks, "\n"),
			Time:    timeText,
		})
	}

	serialized, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Generation("failed to serialize retrieval context", err)
	}

	raw, err := s.llm.CompleteObject(ctx, []ai.Message{
		ai.SystemPrompt(synthesisSystemPrompt),
		ai.UserMessage(fmt.Sprintf("Here are the results of the search: %s", serialized)),
		ai.UserMessage(fmt.Sprintf("Here is the new data: %s", record.Project(rec))),
	}, 0)
	if err != nil {
		return nil, errors.Generation("action synthesis failed", err)
	}

	var result record.SynthesisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.Generation("action synthesis returned schema-violating output", err)
	}
	if result.Actions == nil {
		result.Actions = []record.Action{}
	}
	return &result, nil
}
