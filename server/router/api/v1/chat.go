package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Results []supermemory.Result `json:"results"`
}

// handleChat answers a free-form question by expanding it into a search
// query, optionally time-bounded, and returning the matching memories.
//
//	POST /api/v1/chat
func (s *APIV1Service) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, errors.Validation("malformed chat request"))
	}
	if req.Message == "" {
		return errorResponse(c, errors.Validation("message is required"))
	}

	results, err := s.Pipeline.Recall(c.Request().Context(), req.Message, s.userID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, successResponse(&chatResponse{Results: results}))
}
