// Package autofill streams progressively filled record drafts for form
// auto-fill. The completion is streamed token by token; whenever the
// accumulated prefix can be repaired into a valid JSON object, a whole
// snapshot is emitted. Consumers replace their state with each
// snapshot; array fields are whole-array replacements, never merges.
package autofill

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/ai"
)

// Snapshot is one partial-record state: any subset of the record's
// fields, with null and empty array entries already filtered out.
type Snapshot map[string]any

// Generator produces auto-fill streams.
type Generator struct {
	llm ai.LLMService
	now func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(llm ai.LLMService) *Generator {
	return &Generator{llm: llm, now: time.Now}
}

func (g *Generator) prompt(kind record.Kind) (string, error) {
	switch kind {
	case record.KindEvent:
		return fmt.Sprintf("Generate a realistic calendar event for a professional setting. Current date: %s. Include a business meeting, workshop, or team event. For attendees, provide email addresses like john@example.com. Respond with a JSON object with the fields title, description, startTime (ISO 8601), endTime (ISO 8601), location, attendees (array of email strings).", g.now().UTC().Format(time.RFC3339)), nil
	case record.KindDocument:
		return "Generate a professional document with a meaningful title and content. It could be a report, proposal, or technical documentation. Respond with a JSON object with the fields title, content, author, tags (array of strings).", nil
	case record.KindEmail:
		return "Generate a professional email that could be sent in a business context. Include realistic sender, recipient, subject, and body content. Use email addresses like sender@example.com. Respond with a JSON object with the fields to, from, subject, body, cc (array of email strings).", nil
	default:
		return "", errors.Validation(fmt.Sprintf("unknown record type: %q", kind))
	}
}

// Stream generates a partial-record snapshot stream for the given
// record kind. The snapshot channel closes when generation finishes;
// a terminal failure is delivered on the error channel.
func (g *Generator) Stream(ctx context.Context, kind record.Kind) (<-chan Snapshot, <-chan error) {
	snapshots := make(chan Snapshot)
	errChan := make(chan error, 1)

	prompt, err := g.prompt(kind)
	if err != nil {
		close(snapshots)
		errChan <- err
		close(errChan)
		return snapshots, errChan
	}

	chunks, llmErrs := g.llm.CompleteStream(ctx, []ai.Message{ai.UserMessage(prompt)})

	go func() {
		defer close(snapshots)
		defer close(errChan)

		var accumulated string
		var last Snapshot
		for chunk := range chunks {
			accumulated += chunk
			snapshot, ok := parsePartialObject(accumulated)
			if !ok || reflect.DeepEqual(snapshot, last) {
				continue
			}
			last = snapshot
			select {
			case snapshots <- snapshot:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
		if err := <-llmErrs; err != nil {
			errChan <- errors.Generation("record generation failed", err)
		}
	}()

	return snapshots, errChan
}

// parsePartialObject repairs a streamed JSON prefix into a complete
// object and decodes it into a filtered snapshot. Returns false while
// the prefix is not yet repairable.
func parsePartialObject(prefix string) (Snapshot, bool) {
	repaired, ok := completePartialJSON(prefix)
	if !ok {
		return nil, false
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
		return nil, false
	}
	return sanitize(decoded), true
}

// completePartialJSON closes the open strings, arrays and objects of a
// JSON prefix. Returns false when the prefix cannot be made valid by
// appending alone.
func completePartialJSON(prefix string) (string, bool) {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return "", false
			}
			stack = stack[:len(stack)-1]
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return "", false
			}
			stack = stack[:len(stack)-1]
		}
	}

	repaired := prefix
	if escaped {
		// A dangling escape cannot be completed; drop it with the rest
		// of the open string.
		repaired = repaired[:len(repaired)-1]
	}
	if inString {
		repaired += `"`
	}

	// A value may be pending after a key or comma; give it a null so
	// the object closes, and let sanitize drop it.
	trimmed := trimTrailingSpace(repaired)
	switch {
	case endsWith(trimmed, ':'):
		repaired = trimmed + "null"
	case endsWith(trimmed, ','):
		repaired = trimmed[:len(trimmed)-1]
	default:
		repaired = trimmed
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			repaired += "}"
		} else {
			repaired += "]"
		}
	}
	return repaired, json.Valid([]byte(repaired))
}

func trimTrailingSpace(s string) string {
	for len(s) > 0 {
		switch s[len(s)-1] {
		case ' ', '\t', '\n', '\r':
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}

func endsWith(s string, c byte) bool {
	return len(s) > 0 && s[len(s)-1] == c
}

// sanitize drops null fields and filters null/empty entries out of
// array fields.
func sanitize(decoded map[string]any) Snapshot {
	snapshot := make(Snapshot, len(decoded))
	for key, value := range decoded {
		switch v := value.(type) {
		case nil:
			continue
		case []any:
			filtered := make([]any, 0, len(v))
			for _, entry := range v {
				if entry == nil {
					continue
				}
				if s, ok := entry.(string); ok && s == "" {
					continue
				}
				filtered = append(filtered, entry)
			}
			snapshot[key] = filtered
		default:
			snapshot[key] = value
		}
	}
	return snapshot
}
