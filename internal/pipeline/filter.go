package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexf37/ingest-demo/plugin/supermemory"
)

// TemporalFilter narrows retrieval to a time window. Either bound may
// be absent; an absent bound contributes no constraint. The filter is
// never persisted.
type TemporalFilter struct {
	Start *time.Time
	End   *time.Time
}

// UnmarshalJSON decodes the wire shape {"start": RFC3339, "end": RFC3339}
// with both fields optional.
func (f *TemporalFilter) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Start != "" {
		t, err := time.Parse(time.RFC3339, raw.Start)
		if err != nil {
			return fmt.Errorf("invalid filter start %q: %w", raw.Start, err)
		}
		f.Start = &t
	}
	if raw.End != "" {
		t, err := time.Parse(time.RFC3339, raw.End)
		if err != nil {
			return fmt.Errorf("invalid filter end %q: %w", raw.End, err)
		}
		f.End = &t
	}
	return nil
}

// IsZero reports whether the filter carries no bound at all.
func (f *TemporalFilter) IsZero() bool {
	return f == nil || (f.Start == nil && f.End == nil)
}

// Clauses renders the filter as knowledge-store constraints on the
// numeric datetime metadata field. A clause exists only for a present
// bound; a filter with no bounds yields nil so no spurious clause can
// reach the search call.
func (f *TemporalFilter) Clauses() *supermemory.Filters {
	if f.IsZero() {
		return nil
	}
	clauses := make([]supermemory.FilterClause, 0, 2)
	if f.Start != nil {
		clauses = append(clauses, supermemory.NumericClause(
			supermemory.MetadataKeyDatetime, supermemory.FilterOpGte, f.Start.UnixMilli()))
	}
	if f.End != nil {
		clauses = append(clauses, supermemory.NumericClause(
			supermemory.MetadataKeyDatetime, supermemory.FilterOpLte, f.End.UnixMilli()))
	}
	return &supermemory.Filters{And: clauses}
}
