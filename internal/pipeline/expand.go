package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/ai"
)

// expansionTemperature biases the expansion completions toward
// deterministic output.
const expansionTemperature = 0.3

// Expander turns raw input into an expanded search query, and for the
// free-text message path additionally infers an optional time window.
type Expander struct {
	llm ai.LLMService
}

// NewExpander creates an Expander.
func NewExpander(llm ai.LLMService) *Expander {
	return &Expander{llm: llm}
}

// ExpandedQuery is the message-path expansion output.
type ExpandedQuery struct {
	Query  string
	Filter *TemporalFilter
}

// ExpandRecord expands a structured record into a search query. The
// record path infers no temporal filter.
func (e *Expander) ExpandRecord(ctx context.Context, rec record.Record) (string, error) {
	prompt := fmt.Sprintf("Expand the search query for this %[1]s. Your response will be used to semantically (vector) search a knowledge base for information that might be relevant for understanding this data and its context. Your job is to expand it and add terms that help the vector search find things that are relevant to the data but may not be found using a basic vector similarity search with only what's in the raw data. Here it is the %[1]s: %[2]s",
		rec.Kind(), record.Project(rec))

	expanded, err := e.llm.Complete(ctx, prompt, expansionTemperature)
	if err != nil {
		return "", errors.Generation("query expansion failed", err)
	}
	if expanded == "" {
		return "", errors.Generation("query expansion returned empty output", nil)
	}
	return expanded, nil
}

const expandMessageSystemPrompt = "Expand the search query for this message. Your response will be used to semantically (vector) search a knowledge base for information that might be relevant for understanding this message and its context and things which might be relevant to it. Your job is to expand it and add terms that help the vector search find things that are relevant to the message but may not be found using a basic vector similarity search with only what's in the raw message as it exists already. You will also, if relevant, provide a temporal filter to limit the search to a specific time period.\n\nRespond with a JSON object: {\"expandedQuery\": string, \"temporalFilter\": {\"start\": RFC3339 timestamp or omitted, \"end\": RFC3339 timestamp or omitted} or omitted}."

// ExpandMessage expands a free-text message into a search query plus an
// optional temporal filter.
func (e *Expander) ExpandMessage(ctx context.Context, message string) (*ExpandedQuery, error) {
	raw, err := e.llm.CompleteObject(ctx, []ai.Message{
		ai.SystemPrompt(expandMessageSystemPrompt),
		ai.UserMessage(message),
	}, expansionTemperature)
	if err != nil {
		return nil, errors.Generation("message expansion failed", err)
	}

	var decoded struct {
		ExpandedQuery  string          `json:"expandedQuery"`
		TemporalFilter *TemporalFilter `json:"temporalFilter"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Generation("message expansion returned malformed output", err)
	}
	if decoded.ExpandedQuery == "" {
		return nil, errors.Generation("message expansion returned empty query", nil)
	}

	return &ExpandedQuery{
		Query:  decoded.ExpandedQuery,
		Filter: decoded.TemporalFilter,
	}, nil
}
