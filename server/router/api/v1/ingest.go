package v1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/internal/record"
)

// handleIngest accepts one record, runs it through the pipeline, and
// returns the synthesized actions.
//
//	POST /api/v1/ingest
func (s *APIV1Service) handleIngest(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errorResponse(c, errors.Validation("failed to read request body"))
	}

	rec, err := record.Unmarshal(body)
	if err != nil {
		return errorResponse(c, errors.Validation(err.Error()))
	}

	result, err := s.Pipeline.Ingest(c.Request().Context(), rec, s.userID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, successResponse(result))
}
