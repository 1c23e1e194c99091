package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/pressroom/internal/application"
	"github.com/atvirokodosprendimai/pressroom/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type Handler struct {
	writes *application.WriteService
	reads  *application.ReadService
	token  string
}

func NewRouter(writes *application.WriteService, reads *application.ReadService, apiToken string, log zerolog.Logger) http.Handler {
	h := &Handler{writes: writes, reads: reads, token: apiToken}
	r := chi.NewRouter()

	r.Use(requestLogger(log))
	m := newMetrics()
	r.Use(m.middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", m.handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/accounts", h.handleListAccounts)
		api.With(h.requireToken).Post("/accounts", h.handleCreateAccount)
		api.Get("/accounts/{id}", h.handleGetAccount)
		api.With(h.requireToken).Put("/accounts/{id}", h.handleUpdateAccount)
		api.With(h.requireToken).Delete("/accounts/{id}", h.handleDeleteAccount)

		api.With(h.requireToken).Post("/profiles", h.handleCreateProfile)
		api.Get("/accounts/{id}/profile", h.handleGetProfile)
		api.With(h.requireToken).Put("/accounts/{id}/profile", h.handleUpdateProfile)
		api.With(h.requireToken).Delete("/accounts/{id}/profile", h.handleDeleteProfile)

		api.Get("/contents", h.handleListContent)
		api.With(h.requireToken).Post("/contents", h.handleCreateContent)
		api.Get("/contents/{id}", h.handleGetContent)
		api.With(h.requireToken).Put("/contents/{id}", h.handleUpdateContent)
		api.With(h.requireToken).Delete("/contents/{id}", h.handleDeleteContent)
		api.With(h.requireToken).Post("/contents/{id}/tags/{tagID}", h.handleAddTagToContent)
		api.With(h.requireToken).Delete("/contents/{id}/tags/{tagID}", h.handleRemoveTagFromContent)

		api.Get("/tags", h.handleListTags)
		api.With(h.requireToken).Post("/tags", h.handleCreateTag)
		api.Get("/tags/{id}", h.handleGetTag)
		api.With(h.requireToken).Put("/tags/{id}", h.handleUpdateTag)
		api.With(h.requireToken).Delete("/tags/{id}", h.handleDeleteTag)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in application.CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	account, err := h.writes.CreateAccount(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	account, err := h.reads.GetAccountByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.reads.ListAccounts(r.Context(), r.URL.Query().Get("q"), 200)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var in application.UpdateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	account, err := h.writes.UpdateAccount(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.writes.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var in application.CreateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	profile, err := h.writes.CreateProfile(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	profile, err := h.reads.GetProfileByAccountID(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var in application.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	profile, err := h.writes.UpdateProfileByAccountID(r.Context(), accountID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.writes.DeleteProfileByAccountID(r.Context(), accountID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var in application.CreateContentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	content, err := h.writes.CreateContentWithTags(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (h *Handler) handleListContent(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePositiveQuery(w, r, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := parsePositiveQuery(w, r, "page_size", 10)
	if !ok {
		return
	}
	result, err := h.reads.ListContent(r.Context(), r.URL.Query().Get("scope"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	content, err := h.reads.GetContentByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (h *Handler) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var in application.UpdateContentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	content, err := h.writes.UpdateContent(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (h *Handler) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.writes.DeleteContent(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddTagToContent(w http.ResponseWriter, r *http.Request) {
	contentID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := parseIDParam(w, r, "tagID")
	if !ok {
		return
	}
	if err := h.writes.AddTagToContent(r.Context(), contentID, tagID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"linked": true})
}

func (h *Handler) handleRemoveTagFromContent(w http.ResponseWriter, r *http.Request) {
	contentID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := parseIDParam(w, r, "tagID")
	if !ok {
		return
	}
	if err := h.writes.RemoveTagFromContent(r.Context(), contentID, tagID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in application.CreateTagInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	tag, err := h.writes.CreateTag(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *Handler) handleGetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	tag, err := h.reads.GetTagByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *Handler) handleListTags(w http.ResponseWriter, r *http.Request) {
	list, err := h.reads.ListTags(r.Context(), r.URL.Query().Get("q"), 200)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var in application.UpdateTagInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	tag, err := h.writes.UpdateTag(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *Handler) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.writes.DeleteTag(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireToken guards mutating routes when the server was started with an
// API token. Without one the API is open.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			presented := strings.TrimSpace(authHeader[7:])
			if subtle.ConstantTimeCompare([]byte(presented), []byte(h.token)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
	})
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": name + " must be a positive integer"})
		return 0, false
	}
	return uint(parsed), true
}

func parsePositiveQuery(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": name + " must be a positive integer"})
		return 0, false
	}
	return parsed, true
}

func writeError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var scope *domain.InvalidScopeError
	var notFound *domain.NotFoundError
	switch {
	case errors.As(err, &validation), errors.As(err, &scope):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
