package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/aggregation"
	"github.com/rob-hayward/ProjectZer0-sub005/interfaces/http/rest/middleware"
	"github.com/rob-hayward/ProjectZer0-sub005/pkg/common"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

// GraphHandler serves the aggregation endpoint.
type GraphHandler struct {
	aggregator *aggregation.Aggregator
	logger     *zap.Logger
}

// NewGraphHandler creates the graph handler.
func NewGraphHandler(aggregator *aggregation.Aggregator, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{aggregator: aggregator, logger: logger}
}

// Aggregate handles POST /graph. The body is the aggregation configuration
// object, decoded over the inclusive defaults so omitted flags keep their
// default semantics.
func (h *GraphHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	req := aggregation.DefaultRequest()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	req.RequestingUserID = middleware.UserIDFromContext(r.Context())

	response, err := h.aggregator.Aggregate(r.Context(), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, response)
}
