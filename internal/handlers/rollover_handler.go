package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ronin/internal/errors"
	"ronin/internal/rollover"
)

// RolloverRunner rolls over every budget whose period has ended.
type RolloverRunner interface {
	ProcessDue(ctx context.Context, now time.Time) (rollover.Result, error)
}

// RolloverHandler exposes the rollover run to an external scheduler.
type RolloverHandler struct {
	runner RolloverRunner
}

// NewRolloverHandler creates a new RolloverHandler.
func NewRolloverHandler(runner RolloverRunner) *RolloverHandler {
	return &RolloverHandler{runner: runner}
}

// RunRolloverRequest represents the optional payload for a rollover run.
type RunRolloverRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// RunRollover handles a rollover run.
// @Summary     Roll over ended budgets
// @Description Create the next period's budget for every active recurring budget whose period has ended (pipeline endpoint). Safe to call repeatedly.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header   string             true  "Pipeline API key"
// @Param       request   body     RunRolloverRequest false "Run parameters"
// @Success     200       {object} rollover.Result    "Run summary"
// @Failure     400       {object} ErrorResponse      "Invalid input"
// @Failure     401       {object} ErrorResponse      "Invalid API key"
// @Failure     503       {object} ErrorResponse      "Pipeline not configured"
// @Router      /pipeline/rollover [post]
func (h *RolloverHandler) RunRollover(c *gin.Context) {
	var req RunRolloverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}

	now := time.Now()
	if req.AsOf != nil {
		now = *req.AsOf
	}

	result, err := h.runner.ProcessDue(c.Request.Context(), now)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInternalServer, "Rollover run was cancelled"))
			return
		}
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, result)
}
