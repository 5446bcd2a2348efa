package prompts

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/pkg/auth"
	"github.com/JaimeStill/promptops/pkg/handlers"
	"github.com/JaimeStill/promptops/pkg/pagination"
	"github.com/JaimeStill/promptops/pkg/routes"
)

// Handler provides HTTP endpoints for prompt and version operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Detail},
			{Method: "GET", Pattern: "/{id}/versions", Handler: h.History},
			{Method: "POST", Pattern: "/{id}/versions", Handler: h.CreateVersion},
			{Method: "POST", Pattern: "/{id}/version", Handler: h.CreateVersion},
			{Method: "GET", Pattern: "/{id}/versions/latest", Handler: h.LatestVersion},
			{Method: "GET", Pattern: "/{id}/versions/{versionId}", Handler: h.FindVersion},
			{Method: "POST", Pattern: "/{id}/versions/{versionId}/restore", Handler: h.Restore},
			{Method: "POST", Pattern: "/{id}/archive", Handler: h.Archive},
		},
	}
}

// List returns a paginated list of the caller's prompts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.ListPrompts(r.Context(), owner, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON page request and returns matching prompts.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var page pagination.PageRequest
	if err := handlers.DecodeJSON(w, r, &page); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.ListPrompts(r.Context(), owner, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create processes a JSON body to create a prompt with its first version.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	prompt, err := h.sys.CreatePrompt(r.Context(), owner, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, prompt)
}

// Detail returns a prompt together with its latest version.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	detail, err := h.sys.Detail(r.Context(), owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, detail)
}

// History returns every version of a prompt, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	versions, err := h.sys.History(r.Context(), owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, versions)
}

// CreateVersion appends a version with the content from the JSON body.
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var cmd VersionCommand
	if err := handlers.DecodeJSON(w, r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	version, err := h.sys.CreateVersion(r.Context(), owner, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, version)
}

// LatestVersion returns the highest-numbered version of a prompt.
func (h *Handler) LatestVersion(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	version, err := h.sys.LatestVersion(r.Context(), owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, version)
}

// FindVersion returns one version of a prompt.
func (h *Handler) FindVersion(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	versionID, err := uuid.Parse(r.PathValue("versionId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrVersionNotFound)
		return
	}

	version, err := h.sys.FindVersion(r.Context(), owner, id, versionID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, version)
}

// Restore appends a new version copying the content of an earlier one.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	versionID, err := uuid.Parse(r.PathValue("versionId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrVersionNotFound)
		return
	}

	version, err := h.sys.RestoreVersion(r.Context(), owner, id, versionID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, version)
}

// Archive snapshots the prompt's history to blob storage.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	archive, err := h.sys.Archive(r.Context(), owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, archive)
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := auth.Identity(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrUnauthenticated)
		return "", false
	}
	return owner, true
}

// target resolves the caller and the {id} path value. Malformed ids are
// reported as missing prompts.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	owner, ok := h.owner(w, r)
	if !ok {
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrPromptNotFound)
		return "", uuid.Nil, false
	}

	return owner, id, true
}
