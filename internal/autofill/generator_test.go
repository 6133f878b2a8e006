package autofill

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/ai"
)

func TestCompletePartialJSON(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
		wantOK bool
	}{
		{
			name:   "complete object",
			prefix: `{"title":"Q3"}`,
			want:   `{"title":"Q3"}`,
			wantOK: true,
		},
		{
			name:   "open string",
			prefix: `{"title":"Q3 Rep`,
			want:   `{"title":"Q3 Rep"}`,
			wantOK: true,
		},
		{
			name:   "pending value after colon",
			prefix: `{"title":`,
			want:   `{"title":null}`,
			wantOK: true,
		},
		{
			name:   "trailing comma",
			prefix: `{"title":"Q3",`,
			want:   `{"title":"Q3"}`,
			wantOK: true,
		},
		{
			name:   "open array",
			prefix: `{"tags":["a","b`,
			want:   `{"tags":["a","b"]}`,
			wantOK: true,
		},
		{
			name:   "dangling escape",
			prefix: `{"title":"a\`,
			want:   `{"title":"a"}`,
			wantOK: true,
		},
		{
			name:   "dangling key",
			prefix: `{"title":"Q3","auth`,
			wantOK: false,
		},
		{
			name:   "mismatched close",
			prefix: `{"a":1]`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := completePartialJSON(tt.prefix)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.JSONEq(t, tt.want, got)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	decoded := map[string]any{
		"title":     "Q3",
		"author":    nil,
		"tags":      []any{"a", nil, "", "b"},
		"attendees": []any{},
	}
	snapshot := sanitize(decoded)

	assert.Equal(t, "Q3", snapshot["title"])
	_, hasAuthor := snapshot["author"]
	assert.False(t, hasAuthor, "null fields are dropped")
	assert.Equal(t, []any{"a", "b"}, snapshot["tags"])
	assert.Equal(t, []any{}, snapshot["attendees"])
}

// chunkedLLM fakes the completion service with a fixed chunk sequence.
type chunkedLLM struct {
	chunks []string
	err    error
}

func (c *chunkedLLM) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return "", nil
}

func (c *chunkedLLM) CompleteObject(ctx context.Context, messages []ai.Message, temperature float32) (json.RawMessage, error) {
	return nil, nil
}

func (c *chunkedLLM) CompleteStream(ctx context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	contentChan := make(chan string)
	errChan := make(chan error, 1)
	go func() {
		defer close(contentChan)
		defer close(errChan)
		for _, chunk := range c.chunks {
			contentChan <- chunk
		}
		if c.err != nil {
			errChan <- c.err
		}
	}()
	return contentChan, errChan
}

func TestGenerator_Stream(t *testing.T) {
	llm := &chunkedLLM{chunks: []string{
		`{"title":"Team `,
		`offsite"`,
		`,"attendees":["a@example.com",`,
		`"b@example.com"]}`,
	}}
	gen := NewGenerator(llm)

	snapshots, errChan := gen.Stream(context.Background(), record.KindEvent)

	var collected []Snapshot
	for snapshot := range snapshots {
		collected = append(collected, snapshot)
	}
	require.NoError(t, <-errChan)
	require.NotEmpty(t, collected)

	// Early snapshots hold a subset of fields.
	first := collected[0]
	assert.Contains(t, first, "title")

	// The final snapshot holds the whole generated record, arrays
	// replaced wholesale.
	final := collected[len(collected)-1]
	assert.Equal(t, "Team offsite", final["title"])
	assert.Equal(t, []any{"a@example.com", "b@example.com"}, final["attendees"])
}

func TestGenerator_Stream_UnknownKind(t *testing.T) {
	gen := NewGenerator(&chunkedLLM{})
	snapshots, errChan := gen.Stream(context.Background(), record.Kind("note"))

	for range snapshots {
		t.Fatal("no snapshots expected for unknown kind")
	}
	assert.Error(t, <-errChan)
}
