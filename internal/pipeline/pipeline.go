// Package pipeline implements the ingestion-and-action-synthesis
// pipeline: query expansion, contextual retrieval, memory persistence
// and structured action synthesis, sequenced per submitted record.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alexf37/ingest-demo/internal/observability"
	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/ai"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
	"github.com/alexf37/ingest-demo/store"
)

// Stage names, logged on failure. Never surfaced to the HTTP caller.
const (
	stageExpanding    = "expanding"
	stageRetrieving   = "retrieving"
	stagePersisting   = "persisting"
	stageSynthesizing = "synthesizing"
)

// Pipeline sequences the four stages for one submitted record. Each
// invocation is stateless; concurrent invocations share only the
// immutable clients below.
type Pipeline struct {
	expander    *Expander
	retriever   *Retriever
	persister   *Persister
	synthesizer *Synthesizer
	log         *store.Store
	logger      *slog.Logger
}

// New creates a Pipeline. The ingestion log may be nil, in which case
// completed runs are not recorded locally.
func New(llm ai.LLMService, memories MemoryStore, log *store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		expander:    NewExpander(llm),
		retriever:   NewRetriever(memories),
		persister:   NewPersister(memories),
		synthesizer: NewSynthesizer(llm),
		log:         log,
		logger:      logger,
	}
}

// Ingest runs the full pipeline for one validated record. Any stage
// failure aborts the remainder; no stage is retried and no partial
// result is returned.
func (p *Pipeline) Ingest(ctx context.Context, rec record.Record, userID string) (*record.SynthesisResult, error) {
	reqCtx := observability.NewRequestContext(p.logger, userID)
	reqCtx.Info("ingestion started",
		slog.String(observability.LogFieldRecordType, string(rec.Kind())))

	query, err := p.expander.ExpandRecord(ctx, rec)
	if err != nil {
		reqCtx.Error("ingestion failed", err, slog.String(observability.LogFieldStage, stageExpanding))
		return nil, err
	}

	// Retrieval and persistence have no data dependency on each other;
	// run them concurrently. Synthesis waits for both.
	var (
		results []supermemory.Result
		memory  *supermemory.Memory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rerr error
		results, rerr = p.retriever.Retrieve(gctx, query, userID, nil)
		if rerr != nil {
			reqCtx.Error("ingestion failed", rerr, slog.String(observability.LogFieldStage, stageRetrieving))
		}
		return rerr
	})
	g.Go(func() error {
		var perr error
		memory, perr = p.persister.Persist(gctx, rec, userID)
		if perr != nil {
			reqCtx.Error("ingestion failed", perr, slog.String(observability.LogFieldStage, stagePersisting))
		}
		return perr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reqCtx.Debug("context retrieved and record persisted",
		slog.Int(observability.LogFieldResultCount, len(results)),
		slog.String(observability.LogFieldMemoryID, memory.ID))

	result, err := p.synthesizer.Synthesize(ctx, rec, results)
	if err != nil {
		reqCtx.Error("ingestion failed", err, slog.String(observability.LogFieldStage, stageSynthesizing))
		return nil, err
	}

	p.recordIngestion(ctx, reqCtx, rec, userID, memory, result)

	reqCtx.Info("ingestion completed",
		slog.String(observability.LogFieldRecordType, string(rec.Kind())),
		slog.Int("action_count", len(result.Actions)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return result, nil
}

// Recall runs the message path: expansion with temporal filter
// inference, then a filtered retrieval. Used by chat-style lookups that
// do not persist anything.
func (p *Pipeline) Recall(ctx context.Context, message, userID string) ([]supermemory.Result, error) {
	reqCtx := observability.NewRequestContext(p.logger, userID)

	expanded, err := p.expander.ExpandMessage(ctx, message)
	if err != nil {
		reqCtx.Error("recall failed", err, slog.String(observability.LogFieldStage, stageExpanding))
		return nil, err
	}

	results, err := p.retriever.Retrieve(ctx, expanded.Query, userID, expanded.Filter)
	if err != nil {
		reqCtx.Error("recall failed", err, slog.String(observability.LogFieldStage, stageRetrieving))
		return nil, err
	}

	reqCtx.Info("recall completed",
		slog.Int(observability.LogFieldResultCount, len(results)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return results, nil
}

// recordIngestion appends the completed run to the local ingestion log.
// The log is diagnostic bookkeeping: a write failure is logged and does
// not fail the completed pipeline run.
func (p *Pipeline) recordIngestion(ctx context.Context, reqCtx *observability.RequestContext, rec record.Record, userID string, memory *supermemory.Memory, result *record.SynthesisResult) {
	if p.log == nil {
		return
	}
	if _, err := p.log.CreateIngestion(ctx, &store.Ingestion{
		UserID:      userID,
		RecordType:  string(rec.Kind()),
		MemoryID:    memory.ID,
		ActionCount: len(result.Actions),
	}); err != nil {
		reqCtx.Warn("failed to record ingestion log entry", slog.String("error", err.Error()))
	}
}
