package pipeline

import (
	"context"
	"time"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
)

// Persister writes ingested records into the knowledge store.
type Persister struct {
	store MemoryStore
	now   func() time.Time
}

// NewPersister creates a Persister.
func NewPersister(store MemoryStore) *Persister {
	return &Persister{store: store, now: time.Now}
}

// Persist writes the record's plaintext projection under the user's
// container tag with type and datetime metadata. The datetime is
// written as numeric epoch milliseconds, the canonical representation
// read back at synthesis time.
func (p *Persister) Persist(ctx context.Context, rec record.Record, userID string) (*supermemory.Memory, error) {
	mem, err := p.store.AddMemory(ctx, &supermemory.AddMemoryRequest{
		Content: record.Project(rec),
		Metadata: map[string]any{
			"type":                          string(rec.Kind()),
			supermemory.MetadataKeyDatetime: p.now().UnixMilli(),
		},
		ContainerTags: []string{UserTag(userID)},
	})
	if err != nil {
		return nil, errors.Persistence("memory write failed", err)
	}
	return mem, nil
}
