package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API. Checks PostgreSQL and Redis connectivity.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if s.db != nil {
		g.Go(func() error { return s.db.Ping(ctx) })
	}
	if s.redisClient != nil {
		g.Go(func() error { return s.redisClient.Ping(ctx) })
	}

	if err := g.Wait(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not ready")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      Operator login
// @Description  Authenticate with username and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidCredentials:
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Exchange a refresh token for a new JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.RefreshToken(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout operator
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	_ = s.authService.Logout(r.Context(), token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Event endpoint

// handleEvent godoc
// @Summary      Report a record mutation
// @Description  Notify the coordinator that a record was written or deleted. While bulk import mode is active the event is accepted and skipped.
// @Tags         Events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.MutationEvent  true  "Mutation event"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid event"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Type not registered"
// @Failure      500      {object}  ErrorResponse  "Synchronization failed"
// @Router       /events [post]
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.MutationEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := event.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	switch event.Kind {
	case domain.EventWrite:
		err = s.coordinator.OnWrite(r.Context(), event.Record)
	case domain.EventDelete:
		err = s.coordinator.OnDelete(r.Context(), event.Record)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTypeNotRegistered):
			writeError(w, http.StatusNotFound, "type not registered")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "synchronization failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search endpoints

// searchRequest represents a search query
// @Description Search query parameters
type searchRequest struct {
	// Type scopes the search to one registered type and its subtypes
	Type string `json:"type" example:"Article"`

	// Query is the search expression
	Query string `json:"query" example:"sphinx search"`

	// Mode selects the daemon match mode (extended by default)
	Mode domain.MatchMode `json:"mode,omitempty"`

	// Limit and Offset page through results
	Limit  int `json:"limit,omitempty" example:"20"`
	Offset int `json:"offset,omitempty" example:"0"`

	// Filters restricts matches by attribute values
	Filters map[string][]int64 `json:"filters,omitempty"`

	// SortBy names an attribute to sort on, descending
	SortBy string `json:"sort_by,omitempty"`
}

// handleSearch godoc
// @Summary      Search documents
// @Description  Execute a search query against every index covering the given type. Stale primary copies are filtered out automatically.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      searchRequest  true  "Search query"
// @Success      200      {object}  domain.SearchResult
// @Failure      400      {object}  ErrorResponse  "Invalid request or missing query"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Type not registered"
// @Failure      500      {object}  ErrorResponse  "Search failed"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	opts := domain.SearchOptions{
		Mode:    req.Mode,
		Limit:   req.Limit,
		Offset:  req.Offset,
		Filters: req.Filters,
		SortBy:  req.SortBy,
	}

	result, err := s.searchService.Search(r.Context(), req.Type, req.Query, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTypeNotRegistered):
			writeError(w, http.StatusNotFound, "type not registered")
		default:
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// excerptsRequest represents an excerpt build request
// @Description Excerpt build parameters
type excerptsRequest struct {
	// Type selects the index whose charset rules drive highlighting
	Type string `json:"type" example:"Article"`

	// Docs are the raw document texts to highlight
	Docs []string `json:"docs"`

	// Words is the query whose terms get highlighted
	Words string `json:"words" example:"sphinx search"`

	// Options overrides the daemon's snippet defaults
	Options *domain.ExcerptOptions `json:"options,omitempty"`
}

// excerptsResponse carries one snippet per input document
// @Description Excerpt build result
type excerptsResponse struct {
	Excerpts []string `json:"excerpts"`
}

// handleExcerpts godoc
// @Summary      Build excerpts
// @Description  Highlight the query words inside each document text. Snippets come back in input order.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      excerptsRequest  true  "Excerpt request"
// @Success      200      {object}  excerptsResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Type not registered"
// @Failure      500      {object}  ErrorResponse  "Excerpt build failed"
// @Router       /excerpts [post]
func (s *Server) handleExcerpts(w http.ResponseWriter, r *http.Request) {
	var req excerptsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	if req.Words == "" {
		writeError(w, http.StatusBadRequest, "words is required")
		return
	}

	var opts domain.ExcerptOptions
	if req.Options != nil {
		opts = *req.Options
	}

	excerpts, err := s.searchService.Excerpts(r.Context(), req.Type, req.Docs, req.Words, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTypeNotRegistered):
			writeError(w, http.StatusNotFound, "type not registered")
		default:
			writeError(w, http.StatusInternalServerError, "excerpt build failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, excerptsResponse{Excerpts: excerpts})
}

// Bulk import endpoints

// bulkStatusResponse reports whether bulk import mode is active
// @Description Bulk import mode status
type bulkStatusResponse struct {
	Active bool `json:"active" example:"false"`
}

// handleBulkEnter godoc
// @Summary      Enter bulk import mode
// @Description  Suspend per-record synchronization for the duration of a bulk import. Idempotent.
// @Tags         Bulk
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  bulkStatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /bulk/enter [post]
func (s *Server) handleBulkEnter(w http.ResponseWriter, r *http.Request) {
	s.coordinator.EnterBulkMode()
	writeJSON(w, http.StatusOK, bulkStatusResponse{Active: true})
}

// handleBulkExit godoc
// @Summary      Exit bulk import mode
// @Description  Resume synchronization and rebuild every configured index. The rebuild runs unconditionally because dirty tracking was suspended.
// @Tags         Bulk
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  bulkStatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Rebuild failed"
// @Router       /bulk/exit [post]
func (s *Server) handleBulkExit(w http.ResponseWriter, r *http.Request) {
	if err := s.coordinator.ExitBulkMode(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rebuild indexes")
		return
	}

	writeJSON(w, http.StatusOK, bulkStatusResponse{Active: false})
}

// handleBulkStatus godoc
// @Summary      Get bulk import mode status
// @Description  Report whether per-record synchronization is currently suspended
// @Tags         Bulk
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  bulkStatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /bulk [get]
func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bulkStatusResponse{Active: s.coordinator.BulkMode()})
}

// Type registration endpoints

// handleListTypes godoc
// @Summary      List registered types
// @Description  Get all registered type descriptors
// @Tags         Types
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.TypeDescriptor
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /types [get]
func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.schemaAdmin.ListTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list types")
		return
	}

	writeJSON(w, http.StatusOK, types)
}

// handleRegisterType godoc
// @Summary      Register a type
// @Description  Create or update a type registration. Takes effect on the next configuration build.
// @Tags         Types
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.TypeDescriptor  true  "Type descriptor"
// @Success      201      {object}  domain.TypeDescriptor
// @Failure      400      {object}  ErrorResponse  "Invalid descriptor"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Parent type not registered"
// @Failure      409      {object}  ErrorResponse  "Schema source is read-only"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /types [post]
func (s *Server) handleRegisterType(w http.ResponseWriter, r *http.Request) {
	var desc domain.TypeDescriptor
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.schemaAdmin.RegisterType(r.Context(), &desc); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrTypeNotRegistered):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrSchemaReadOnly):
			writeError(w, http.StatusConflict, "schema source is read-only")
		default:
			writeError(w, http.StatusInternalServerError, "failed to register type")
		}
		return
	}

	writeJSON(w, http.StatusCreated, desc)
}

// handleGetType godoc
// @Summary      Get a registered type
// @Description  Get one type descriptor by name
// @Tags         Types
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Type name"
// @Success      200   {object}  domain.TypeDescriptor
// @Failure      400   {object}  ErrorResponse  "Missing type name"
// @Failure      401   {object}  ErrorResponse  "Unauthorized"
// @Failure      404   {object}  ErrorResponse  "Type not registered"
// @Failure      500   {object}  ErrorResponse  "Internal server error"
// @Router       /types/{name} [get]
func (s *Server) handleGetType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing type name")
		return
	}

	desc, err := s.schemaAdmin.GetType(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTypeNotRegistered), errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "type not registered")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get type")
		}
		return
	}

	writeJSON(w, http.StatusOK, desc)
}

// handleDeregisterType godoc
// @Summary      Deregister a type
// @Description  Remove a type registration. Its indexes disappear on the next configuration build.
// @Tags         Types
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Type name"
// @Success      200   {object}  StatusResponse
// @Failure      400   {object}  ErrorResponse  "Missing type name"
// @Failure      401   {object}  ErrorResponse  "Unauthorized"
// @Failure      404   {object}  ErrorResponse  "Type not registered"
// @Failure      409   {object}  ErrorResponse  "Schema source is read-only"
// @Failure      500   {object}  ErrorResponse  "Internal server error"
// @Router       /types/{name} [delete]
func (s *Server) handleDeregisterType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing type name")
		return
	}

	if err := s.schemaAdmin.DeregisterType(r.Context(), name); err != nil {
		switch {
		case errors.Is(err, domain.ErrTypeNotRegistered), errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "type not registered")
		case errors.Is(err, domain.ErrSchemaReadOnly):
			writeError(w, http.StatusConflict, "schema source is read-only")
		default:
			writeError(w, http.StatusInternalServerError, "failed to deregister type")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Configuration endpoints

// handleConfigBuild godoc
// @Summary      Build and deploy configuration
// @Description  Render the daemon configuration from the registered types, prepare source table storage, deploy, and swap the index registry.
// @Tags         Configuration
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DeployResult
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Build failed"
// @Router       /config/build [post]
func (s *Server) handleConfigBuild(w http.ResponseWriter, r *http.Request) {
	result, err := s.schemaAdmin.BuildConfiguration(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleConfigPreview godoc
// @Summary      Preview configuration
// @Description  Render the daemon configuration from the registered types without deploying it
// @Tags         Configuration
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string  "Rendered configuration"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Render failed"
// @Router       /config/preview [get]
func (s *Server) handleConfigPreview(w http.ResponseWriter, r *http.Request) {
	rendered, err := s.schemaAdmin.PreviewConfiguration(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rendered))
}

// Rotation endpoints

// handleRotateDeltas godoc
// @Summary      Rotate delta indexes
// @Description  Rebuild every delta index. Runs under the rotation lock.
// @Tags         Rotations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.RotationResult
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      409  {object}  ErrorResponse  "Rotation already in progress"
// @Failure      500  {object}  ErrorResponse  "Rotation failed"
// @Router       /rotations/delta [post]
func (s *Server) handleRotateDeltas(w http.ResponseWriter, r *http.Request) {
	result, err := s.rotationService.RotateDeltas(r.Context())
	if err != nil {
		writeRotationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRebuildAll godoc
// @Summary      Rebuild all indexes
// @Description  Rebuild every configured index, primary and delta. This is the pass that clears accumulated dirty flags.
// @Tags         Rotations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.RotationResult
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      409  {object}  ErrorResponse  "Rotation already in progress"
// @Failure      500  {object}  ErrorResponse  "Rotation failed"
// @Router       /rotations/full [post]
func (s *Server) handleRebuildAll(w http.ResponseWriter, r *http.Request) {
	result, err := s.rotationService.RebuildAll(r.Context())
	if err != nil {
		writeRotationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRebuildType godoc
// @Summary      Rebuild one type's indexes
// @Description  Rebuild the primary and delta indexes covering one registered type
// @Tags         Rotations
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Type name"
// @Success      200   {object}  domain.RotationResult
// @Failure      400   {object}  ErrorResponse  "Missing type name"
// @Failure      401   {object}  ErrorResponse  "Unauthorized"
// @Failure      404   {object}  ErrorResponse  "Type not registered"
// @Failure      409   {object}  ErrorResponse  "Rotation already in progress"
// @Failure      500   {object}  ErrorResponse  "Rotation failed"
// @Router       /rotations/types/{name} [post]
func (s *Server) handleRebuildType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing type name")
		return
	}

	result, err := s.rotationService.RebuildType(r.Context(), name)
	if err != nil {
		writeRotationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeRotationError maps rotation failures onto HTTP status codes shared
// by every rotation trigger.
func writeRotationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTypeNotRegistered):
		writeError(w, http.StatusNotFound, "type not registered")
	case errors.Is(err, domain.ErrRotationInProgress):
		writeError(w, http.StatusConflict, "rotation already in progress")
	case errors.Is(err, domain.ErrNoIndexes):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "rotation failed")
	}
}

// handleListRotations godoc
// @Summary      List rotation states
// @Description  Get the rotation bookkeeping for every index, sorted by index name
// @Tags         Rotations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.RotationState
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /rotations [get]
func (s *Server) handleListRotations(w http.ResponseWriter, r *http.Request) {
	states, err := s.rotationService.ListRotationStates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rotation states")
		return
	}

	writeJSON(w, http.StatusOK, states)
}

// handleGetRotation godoc
// @Summary      Get rotation state
// @Description  Get the rotation bookkeeping for one index
// @Tags         Rotations
// @Produce      json
// @Security     BearerAuth
// @Param        index  path      string  true  "Index name"
// @Success      200    {object}  domain.RotationState
// @Failure      400    {object}  ErrorResponse  "Missing index name"
// @Failure      401    {object}  ErrorResponse  "Unauthorized"
// @Failure      404    {object}  ErrorResponse  "Rotation state not found"
// @Failure      500    {object}  ErrorResponse  "Internal server error"
// @Router       /rotations/{index} [get]
func (s *Server) handleGetRotation(w http.ResponseWriter, r *http.Request) {
	index := r.PathValue("index")
	if index == "" {
		writeError(w, http.StatusBadRequest, "missing index name")
		return
	}

	state, err := s.rotationService.GetRotationState(r.Context(), index)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "rotation state not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get rotation state")
		}
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// Task endpoints

// handleListTasks godoc
// @Summary      List tasks
// @Description  List queued tasks, optionally filtered by status and type
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by task status"
// @Param        type    query     string  false  "Filter by task type"
// @Param        limit   query     int     false  "Maximum number of tasks"  default(50)
// @Success      200     {array}   domain.Task
// @Failure      401     {object}  ErrorResponse  "Unauthorized"
// @Failure      500     {object}  ErrorResponse  "Internal server error"
// @Router       /tasks [get]
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := driven.TaskFilter{
		Status: domain.TaskStatus(r.URL.Query().Get("status")),
		Type:   domain.TaskType(r.URL.Query().Get("type")),
		Limit:  50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	tasks, err := s.taskQueue.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// handleGetTask godoc
// @Summary      Get task
// @Description  Get one queued task by ID
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      400  {object}  ErrorResponse  "Missing task ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Task not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /tasks/{id} [get]
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing task id")
		return
	}

	task, err := s.taskQueue.GetTask(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "task not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get task")
		}
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
