package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/alexf37/ingest-demo/internal/autofill"
	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/internal/profile"
	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
	"github.com/alexf37/ingest-demo/server/middleware"
	"github.com/alexf37/ingest-demo/store"
)

const (
	// userIDHeader identifies the caller. The pipeline scopes every
	// memory operation to this user.
	userIDHeader = "X-User-ID"

	// maxBodySize caps ingest and chat payloads. Records are small; a
	// larger body is never legitimate.
	maxBodySize = "1M"
)

// IngestService runs the ingestion pipeline and the chat recall path.
type IngestService interface {
	Ingest(ctx context.Context, rec record.Record, userID string) (*record.SynthesisResult, error)
	Recall(ctx context.Context, message, userID string) ([]supermemory.Result, error)
}

// AutofillService streams progressively completed record drafts.
type AutofillService interface {
	Stream(ctx context.Context, kind record.Kind) (<-chan autofill.Snapshot, <-chan error)
}

type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Pipeline IngestService
	Autofill AutofillService

	limiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, pipeline IngestService, autofill AutofillService) *APIV1Service {
	return &APIV1Service{
		Profile:  profile,
		Store:    store,
		Pipeline: pipeline,
		Autofill: autofill,
		limiter:  middleware.NewRateLimiter(10, 20),
	}
}

// Register mounts the v1 routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	rateLimited := s.limiter.Middleware(func(c echo.Context) string {
		return s.userID(c)
	})

	apiV1 := echoServer.Group("/api/v1", echomw.BodyLimit(maxBodySize), rateLimited)
	apiV1.POST("/ingest", s.handleIngest)
	apiV1.GET("/generate/:kind", s.handleGenerate)
	apiV1.POST("/chat", s.handleChat)
	apiV1.GET("/ingestions", s.handleListIngestions)
}

// StartLimiterReaper reaps idle per-user limiters on the given interval
// until stop is closed.
func (s *APIV1Service) StartLimiterReaper(interval time.Duration, stop <-chan struct{}) {
	s.limiter.StartReaper(interval, stop)
}

// userID resolves the caller identity, falling back to the configured
// default user when the header is absent.
func (s *APIV1Service) userID(c echo.Context) string {
	if id := c.Request().Header.Get(userIDHeader); id != "" {
		return id
	}
	return s.Profile.DefaultUser
}

type responseEnvelope struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

func successResponse(result any) *responseEnvelope {
	return &responseEnvelope{Success: true, Result: result}
}

// errorResponse maps a pipeline error to an HTTP status and body.
// Validation errors are the caller's fault; everything else is ours.
// The code picks the status and is logged upstream; the body carries
// only a message, never the code or the upstream cause.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch errors.CodeOf(err, errors.ErrCodeGeneration) {
	case errors.ErrCodeValidation:
		status = http.StatusBadRequest
	case errors.ErrCodeServiceUnavailable:
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, &responseEnvelope{
		Success: false,
		Error:   errors.MessageOf(err, "request failed"),
	})
}
