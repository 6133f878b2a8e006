package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/store"
)

const defaultIngestionPageSize = 50

// handleListIngestions returns the caller's ingestion log entries,
// newest first.
//
//	GET /api/v1/ingestions?limit=N
func (s *APIV1Service) handleListIngestions(c echo.Context) error {
	limit := defaultIngestionPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return errorResponse(c, errors.Validation("limit must be a positive integer"))
		}
		limit = parsed
	}

	userID := s.userID(c)
	ingestions, err := s.Store.ListIngestions(c.Request().Context(), &store.FindIngestion{
		UserID: &userID,
		Limit:  &limit,
	})
	if err != nil {
		return errorResponse(c, errors.Persistence("failed to list ingestions", err))
	}
	return c.JSON(http.StatusOK, successResponse(ingestions))
}
