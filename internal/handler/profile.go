package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/service"
)

// dateLayout is the wire format of experience dates.
const dateLayout = "2006-01-02"

// ProfileHandler serves the /api/profile routes.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// upsertProfileRequest is the flat form body of a profile upsert. Social links
// sit at the top level, next to the profile fields.
type upsertProfileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status" validate:"notblank"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills" validate:"notblank"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// fields turns the request into options: empty strings are absent.
func (req upsertProfileRequest) fields() model.ProfileFields {
	return model.ProfileFields{
		Company:        model.Present(req.Company),
		Website:        model.Present(req.Website),
		Location:       model.Present(req.Location),
		Bio:            model.Present(req.Bio),
		Status:         model.Present(req.Status),
		GitHubUsername: model.Present(req.GitHubUsername),
		Skills:         model.Present(req.Skills),
		Social: model.SocialFields{
			YouTube:   model.Present(req.YouTube),
			Twitter:   model.Present(req.Twitter),
			Facebook:  model.Present(req.Facebook),
			LinkedIn:  model.Present(req.LinkedIn),
			Instagram: model.Present(req.Instagram),
		},
	}
}

type experienceRequest struct {
	Title       string `json:"title" validate:"notblank"`
	Company     string `json:"company" validate:"notblank"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required,datetime=2006-01-02"`
	To          string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// experience converts a validated request. Dates were checked by the
// datetime tag, so parsing cannot fail here.
func (req experienceRequest) experience() model.Experience {
	exp := model.Experience{
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    req.Location,
		Current:     req.Current,
		Description: req.Description,
	}
	exp.From, _ = time.Parse(dateLayout, req.From)
	if req.To != "" {
		to, _ := time.Parse(dateLayout, req.To)
		exp.To = &to
	}
	return exp
}

// HandleGetOwn returns the caller's profile.
//
// HTTP: GET /api/profile/me
func (h *ProfileHandler) HandleGetOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w, h.logger)
		return
	}

	p, err := h.profiles.GetOwn(r.Context(), identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

// HandleUpsert creates or updates the caller's profile.
//
// HTTP: POST /api/profile
// REQUEST BODY: {"status": "Developer", "skills": "go, sql", "company": "Acme", "twitter": "..."}
func (h *ProfileHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w, h.logger)
		return
	}

	var req upsertProfileRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.profiles.Upsert(r.Context(), identity, req.fields())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

// HandleList returns every profile.
//
// HTTP: GET /api/profile
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profiles)
}

// HandleGetByIdentity returns one profile by its owner's id.
//
// HTTP: GET /api/profile/user/{user_id}
func (h *ProfileHandler) HandleGetByIdentity(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetByIdentity(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

// HandleDeleteOwn deletes the caller's profile and account.
//
// HTTP: DELETE /api/profile
func (h *ProfileHandler) HandleDeleteOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w, h.logger)
		return
	}

	if err := h.profiles.DeleteOwn(r.Context(), identity); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, MessageResponse{Msg: "User deleted"})
}

// HandleAddExperience prepends an experience entry.
//
// HTTP: PUT /api/profile/experience
// REQUEST BODY: {"title": "Engineer", "company": "Acme", "from": "2020-01-31", "current": true}
func (h *ProfileHandler) HandleAddExperience(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w, h.logger)
		return
	}

	var req experienceRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.profiles.AppendExperience(r.Context(), identity, req.experience())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

// HandleDeleteExperience removes one experience entry.
//
// HTTP: DELETE /api/profile/experience/{exp_id}
func (h *ProfileHandler) HandleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w, h.logger)
		return
	}

	p, err := h.profiles.DeleteExperience(r.Context(), identity, chi.URLParam(r, "exp_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

// HandleGitHubRepos lists a GitHub user's latest repositories.
//
// HTTP: GET /api/profile/github/{username}
func (h *ProfileHandler) HandleGitHubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.profiles.GitHubRepos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, repos)
}
