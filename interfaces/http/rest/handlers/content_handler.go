package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
	"github.com/rob-hayward/ProjectZer0-sub005/interfaces/http/rest/middleware"
	"github.com/rob-hayward/ProjectZer0-sub005/pkg/common"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
	"github.com/rob-hayward/ProjectZer0-sub005/repository"
)

// ContentHandler serves the per-type CRUD and voting endpoints. One handler
// covers every content type; the type comes from the route and selects the
// descriptor-parameterized repository.
type ContentHandler struct {
	repos     map[content.NodeType]*repository.ContentRepository
	userState *repository.UserStateStore
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewContentHandler creates the content handler.
func NewContentHandler(
	repos map[content.NodeType]*repository.ContentRepository,
	userState *repository.UserStateStore,
	logger *zap.Logger,
) *ContentHandler {
	return &ContentHandler{
		repos:     repos,
		userState: userState,
		validate:  validator.New(),
		logger:    logger,
	}
}

type createRequest struct {
	Content          string                 `json:"content" validate:"required"`
	Keywords         []string               `json:"keywords" validate:"max=20,dive,min=1"`
	Categories       []string               `json:"categories" validate:"max=3"`
	ParentID         string                 `json:"parent_id"`
	ParentType       string                 `json:"parent_type"`
	Properties       map[string]interface{} `json:"properties"`
	AttachDiscussion bool                   `json:"attach_discussion"`
}

type voteRequest struct {
	Positive bool `json:"positive"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

// Create handles POST /nodes/{nodeType}
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	node, err := repo.Create(r.Context(), repository.CreatePayload{
		CreatedBy:        userID,
		Content:          req.Content,
		Keywords:         req.Keywords,
		Categories:       req.Categories,
		ParentID:         req.ParentID,
		ParentType:       content.NodeType(req.ParentType),
		Properties:       req.Properties,
		AttachDiscussion: req.AttachDiscussion,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, node)
}

// Get handles GET /nodes/{nodeType}/{id}
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	node, err := repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, node)
}

// Update handles PUT /nodes/{nodeType}/{id}
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if _, err := middleware.RequireUser(r.Context()); err != nil {
		common.RespondAppError(w, err)
		return
	}

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	node, err := repo.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, node)
}

// Delete handles DELETE /nodes/{nodeType}/{id}
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if _, err := middleware.RequireUser(r.Context()); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Vote handles POST /nodes/{nodeType}/{id}/votes/{kind}
func (h *ContentHandler) Vote(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	id := chi.URLParam(r, "id")
	var tally votes.Tally
	switch votes.VoteKind(chi.URLParam(r, "kind")) {
	case votes.KindInclusion:
		tally, err = repo.VoteInclusion(r.Context(), id, userID, req.Positive)
	case votes.KindContent:
		tally, err = repo.VoteContent(r.Context(), id, userID, req.Positive)
	default:
		err = pkgerrors.NewValidationError("vote kind must be inclusion or content")
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, tally)
}

// RemoveVote handles DELETE /nodes/{nodeType}/{id}/votes/{kind}
func (h *ContentHandler) RemoveVote(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	kind := votes.VoteKind(chi.URLParam(r, "kind"))
	if kind != votes.KindInclusion && kind != votes.KindContent {
		common.RespondAppError(w, pkgerrors.NewValidationError("vote kind must be inclusion or content"))
		return
	}

	tally, err := repo.RemoveVote(r.Context(), chi.URLParam(r, "id"), userID, kind)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, tally)
}

// SetVisibility handles PUT /nodes/{nodeType}/{id}/visibility
func (h *ContentHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	if err := h.userState.SetVisibilityPref(r.Context(), userID, chi.URLParam(r, "id"), req.Visible); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]bool{"visible": req.Visible})
}

func (h *ContentHandler) repoFor(r *http.Request) (*repository.ContentRepository, error) {
	nodeType := content.NodeType(chi.URLParam(r, "nodeType"))
	repo, ok := h.repos[nodeType]
	if !ok {
		return nil, pkgerrors.NewValidationError("unknown content type: " + string(nodeType))
	}
	return repo, nil
}
