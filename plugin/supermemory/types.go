package supermemory

import (
	"strconv"
	"time"
)

// MetadataKeyDatetime is the metadata field carrying a memory's
// temporal position, stored as numeric epoch milliseconds.
const MetadataKeyDatetime = "datetime"

// FilterOp is a comparison operator in a search filter clause.
type FilterOp string

const (
	FilterOpGte FilterOp = ">="
	FilterOpLte FilterOp = "<="
)

// FilterClause constrains one metadata field.
type FilterClause struct {
	Key        string   `json:"key"`
	Value      any      `json:"value"`
	FilterType string   `json:"filterType"`
	Operator   FilterOp `json:"operator"`
}

// Filters is the filter tree sent with a search. Only AND combination
// is used by this client.
type Filters struct {
	And []FilterClause `json:"AND"`
}

// NumericClause builds a numeric comparison clause.
func NumericClause(key string, op FilterOp, value int64) FilterClause {
	return FilterClause{
		Key:        key,
		Value:      value,
		FilterType: "numeric",
		Operator:   op,
	}
}

// SearchRequest is the search contract consumed by the pipeline.
type SearchRequest struct {
	Query           string   `json:"q"`
	ContainerTags   []string `json:"containerTags"`
	IncludeFullDocs bool     `json:"includeFullDocs"`
	IncludeSummary  bool     `json:"includeSummary"`
	Rerank          bool     `json:"rerank"`
	RewriteQuery    bool     `json:"rewriteQuery"`
	Filters         *Filters `json:"filters,omitempty"`
}

// Result is one retrieved item, in the relevance order the reranker
// returned it.
type Result struct {
	ID       string         `json:"documentId"`
	Title    string         `json:"title"`
	Summary  string         `json:"summary"`
	Chunks   []string       `json:"chunks"`
	Metadata map[string]any `json:"metadata"`
}

// Datetime extracts the temporal metadata of a result. The canonical
// representation is numeric epoch milliseconds; numeric strings written
// by older clients are accepted on read.
func (r *Result) Datetime() (time.Time, bool) {
	raw, ok := r.Metadata[MetadataKeyDatetime]
	if !ok || raw == nil {
		return time.Time{}, false
	}

	var millis int64
	switch v := raw.(type) {
	case float64:
		millis = int64(v)
	case int64:
		millis = v
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		millis = parsed
	default:
		return time.Time{}, false
	}
	return time.UnixMilli(millis).UTC(), true
}

// SearchResponse is the search call result.
type SearchResponse struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}

// AddMemoryRequest is the write contract consumed by the pipeline.
type AddMemoryRequest struct {
	Content       string         `json:"content"`
	Metadata      map[string]any `json:"metadata"`
	ContainerTags []string       `json:"containerTags"`
}

// Memory is the handle returned for a stored memory.
type Memory struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
