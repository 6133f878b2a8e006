package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/internal/record"
)

const streamDoneMarker = "[DONE]"

// handleGenerate streams progressively completed drafts of a record of
// the given kind as server-sent events. Each event carries the full
// draft so far; the stream ends with a [DONE] marker.
//
//	GET /api/v1/generate/:kind
func (s *APIV1Service) handleGenerate(c echo.Context) error {
	kind := record.Kind(c.Param("kind"))
	switch kind {
	case record.KindEvent, record.KindDocument, record.KindEmail:
	default:
		return errorResponse(c, errors.Validation(fmt.Sprintf("unknown record type: %q", kind)))
	}

	ctx := c.Request().Context()
	snapshots, errs := s.Autofill.Stream(ctx, kind)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				writeEvent(resp, map[string]string{"error": errors.MessageOf(err, "record generation failed")})
				return nil
			}
		case snapshot, ok := <-snapshots:
			if !ok {
				// A terminal error is buffered before the snapshot
				// channel closes; report it instead of a clean end.
				if errs != nil {
					if err := <-errs; err != nil {
						writeEvent(resp, map[string]string{"error": errors.MessageOf(err, "record generation failed")})
						return nil
					}
				}
				fmt.Fprintf(resp, "data: %s\n\n", streamDoneMarker)
				resp.Flush()
				return nil
			}
			if err := writeEvent(resp, snapshot); err != nil {
				return nil
			}
		}
	}
}

func writeEvent(resp *echo.Response, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
