// Package api exposes the content-repository facade over HTTP for the
// editing application.
package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
	"github.com/contentdeck/content-repo/pkg/contentrepo/config"
)

// tokenTTL bounds how long an issued editor token stays valid.
const tokenTTL = 12 * time.Hour

// Handler handles HTTP requests against the facade.
type Handler struct {
	svc       contentrepo.Service
	cfg       *config.Config
	tokenAuth *jwtauth.JWTAuth
	log       zerolog.Logger
}

// NewHandler creates an API handler. jwtSecret signs the session tokens
// handed out after authentication.
func NewHandler(svc contentrepo.Service, cfg *config.Config, jwtSecret []byte, log zerolog.Logger) *Handler {
	return &Handler{
		svc:       svc,
		cfg:       cfg,
		tokenAuth: jwtauth.New("HS256", jwtSecret, nil),
		log:       log,
	}
}

// Routes returns the routes for the editor API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth", h.Authenticate)
	r.Get("/auth/component", h.AuthComponent)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Get("/user", h.CurrentUser)
		r.Get("/collections", h.ListCollections)
		r.Get("/collections/{collection}/entries", h.ListEntries)
		r.Post("/collections/{collection}/entries", h.CreateEntry)
		r.Get("/collections/{collection}/entries/{slug}", h.GetEntry)
		r.Put("/collections/{collection}/entries/{slug}", h.UpdateEntry)
		r.Delete("/collections/{collection}/entries/{slug}", h.DeleteEntry)

		r.Get("/editorial", h.UnpublishedEntries)
		r.Get("/editorial/{collection}/{slug}", h.UnpublishedEntry)
		r.Put("/editorial/{collection}/{slug}/status", h.UpdateStatus)
		r.Post("/editorial/{collection}/{slug}/publish", h.Publish)
	})

	return r
}

// AuthResponse carries the signed API token plus the backend session.
type AuthResponse struct {
	Token string               `json:"token"`
	User  *contentrepo.Session `json:"user"`
}

func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var creds contentrepo.Credentials
	if err := render.DecodeJSON(r.Body, &creds); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.svc.Authenticate(r.Context(), creds)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	claims := map[string]interface{}{"provider": sess.Provider}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, tokenTTL)
	_, token, err := h.tokenAuth.Encode(claims)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, AuthResponse{Token: token, User: sess})
}

func (h *Handler) AuthComponent(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"component": h.svc.AuthComponent()})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.CurrentUser(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sess == nil {
		h.renderError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	render.JSON(w, r, sess)
}

func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.cfg.Collections)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.ListEntries(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, entries)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.GetEntry(r.Context(), c, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, entry)
}

// EntryPayload is the write-request body for entry persists.
type EntryPayload struct {
	Data        map[string]any `json:"data"`
	Unpublished bool           `json:"unpublished"`
	Status      string         `json:"status"`
	Media       []MediaPayload `json:"media,omitempty"`
}

// MediaPayload is one base64-encoded media asset accompanying a persist.
type MediaPayload struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	var payload EntryPayload
	if err := render.DecodeJSON(r.Body, &payload); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := h.svc.NewEntry(c)
	draft.Data = payload.Data
	h.persist(w, r, c, draft, payload)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	var payload EntryPayload
	if err := render.DecodeJSON(r.Body, &payload); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	slug := chi.URLParam(r, "slug")
	draft := contentrepo.NewEntry(c.Name, slug, c.EntryPath(slug))
	draft.Data = payload.Data
	h.persist(w, r, c, draft, payload)
}

func (h *Handler) persist(w http.ResponseWriter, r *http.Request, c *contentrepo.Collection, draft *contentrepo.Entry, payload EntryPayload) {
	media, err := decodeMedia(payload.Media)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid media encoding")
		return
	}

	opts := contentrepo.PersistOptions{Status: contentrepo.EditorialStatus(payload.Status)}
	if payload.Unpublished {
		err = h.svc.PersistUnpublishedEntry(r.Context(), c, draft, media, opts)
	} else {
		err = h.svc.PersistEntry(r.Context(), c, draft, media, opts)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, draft)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), c, chi.URLParam(r, "slug")); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *Handler) UnpublishedEntries(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	entries, err := h.svc.UnpublishedEntries(r.Context(), page, perPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, entries)
}

func (h *Handler) UnpublishedEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.UnpublishedEntry(r.Context(), c, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, entry)
}

// StatusPayload is the body for workflow transitions.
type StatusPayload struct {
	Status contentrepo.EditorialStatus `json:"status"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload StatusPayload
	if err := render.DecodeJSON(r.Body, &payload); err != nil || !payload.Status.Valid() {
		h.renderError(w, r, http.StatusBadRequest, "invalid status")
		return
	}

	err := h.svc.UpdateUnpublishedEntryStatus(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "slug"), payload.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	err := h.svc.PublishUnpublishedEntry(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "slug"), contentrepo.StatusPendingPublish)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) (*contentrepo.Collection, bool) {
	name := chi.URLParam(r, "collection")
	c, ok := h.cfg.Collection(name)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "unknown collection")
		return nil, false
	}
	return c, true
}

func decodeMedia(payloads []MediaPayload) ([]contentrepo.MediaFile, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	media := make([]contentrepo.MediaFile, 0, len(payloads))
	for _, p := range payloads {
		data, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, err
		}
		media = append(media, contentrepo.MediaFile{Name: p.Name, ContentType: p.ContentType, Data: data})
	}
	return media, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contentrepo.ErrNotFound):
		h.renderError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, contentrepo.ErrAuth):
		h.renderError(w, r, http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, contentrepo.ErrCreateNotAllowed):
		h.renderError(w, r, http.StatusForbidden, "collection does not allow new entries")
	case errors.Is(err, contentrepo.ErrWorkflowUnsupported):
		h.renderError(w, r, http.StatusNotImplemented, "backend has no editorial workflow")
	case errors.Is(err, contentrepo.ErrUnsupportedFormat):
		h.renderError(w, r, http.StatusUnprocessableEntity, "no format for entry")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		h.renderError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}
