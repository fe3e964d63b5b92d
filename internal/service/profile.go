// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → decodes requests, validates shape, writes responses
//	Service (business layer) → enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the store
//
// Services never see *http.Request and return apperror kinds, not status codes.
// Every dependency is an interface passed to the constructor, so tests swap in
// in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/github"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
	"github.com/samber/mo"
)

// Client-facing not-found messages.
const (
	MsgNoOwnProfile    = "There is no profile for this user"
	MsgProfileNotFound = "Profile not found"
	MsgNoGitHubProfile = "No Github profile found"
)

// MsgSkillsRequired rejects a skills string with no element left after
// splitting, such as ",,,".
const MsgSkillsRequired = "Skills is required"

// RepoLister lists a GitHub user's public repositories.
type RepoLister interface {
	Repos(ctx context.Context, username string) ([]github.Repo, error)
}

// ProfileService manages the one profile each identity owns.
type ProfileService struct {
	repo   repository.ProfileRepository
	repos  RepoLister
	logger *slog.Logger
}

// NewProfileService wires the service. repos may be nil, in which case
// GitHubRepos always reports no profile.
func NewProfileService(repo repository.ProfileRepository, repos RepoLister, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		repos:  repos,
		logger: logger,
	}
}

// Upsert creates the identity's profile or merges fields into it.
//
// MERGE RULES:
//   - a present field replaces the stored value, an absent one leaves it alone
//   - skills arrive as one comma-delimited string and are stored as a list;
//     blank elements are dropped and a list left empty is rejected
//   - social links are rebuilt from this request only, so a link left out of
//     the request is removed
//
// The identity comes from a verified credential. An empty one is a wiring bug,
// not a client error.
func (s *ProfileService) Upsert(ctx context.Context, identity string, fields model.ProfileFields) (*model.Profile, error) {
	if identity == "" {
		return nil, errors.New("service/profile: upsert without an identity")
	}

	update := repository.ProfileUpdate{
		Company:        optionPtr(fields.Company),
		Website:        optionPtr(fields.Website),
		Location:       optionPtr(fields.Location),
		Bio:            optionPtr(fields.Bio),
		Status:         optionPtr(fields.Status),
		GitHubUsername: optionPtr(fields.GitHubUsername),
		Social:         fields.Social.Build(),
	}
	if raw, ok := fields.Skills.Get(); ok {
		update.Skills = model.SplitSkills(raw)
		if len(update.Skills) == 0 {
			return nil, apperror.ValidationFailed("skills", MsgSkillsRequired)
		}
	}

	p, err := s.repo.UpsertProfile(ctx, identity, update)
	if err != nil {
		return nil, fmt.Errorf("service/profile: upserting profile of %s: %w", identity, err)
	}

	s.logger.Info("profile upserted", slog.String("userID", identity))
	return p, nil
}

// AppendExperience puts exp at the head of the identity's experience list.
//
// The profile must already exist; one is never created here. Each call adds a
// new entry, so a retried request adds a duplicate.
func (s *ProfileService) AppendExperience(ctx context.Context, identity string, exp model.Experience) (*model.Profile, error) {
	var invalid []apperror.FieldError
	if strings.TrimSpace(exp.Title) == "" {
		invalid = append(invalid, apperror.FieldError{Field: "title", Message: "Title is required"})
	}
	if strings.TrimSpace(exp.Company) == "" {
		invalid = append(invalid, apperror.FieldError{Field: "company", Message: "Company is required"})
	}
	if exp.From.IsZero() {
		invalid = append(invalid, apperror.FieldError{Field: "from", Message: "From date is required"})
	}
	if len(invalid) > 0 {
		return nil, apperror.Invalid(invalid...)
	}

	p, err := s.repo.PrependExperience(ctx, identity, &exp)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.NotFoundMessage(MsgProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("service/profile: adding experience for %s: %w", identity, err)
	}

	s.logger.Info("experience added",
		slog.String("userID", identity),
		slog.String("experienceID", exp.ID),
	)
	return p, nil
}

// DeleteExperience removes one entry from the identity's own profile.
func (s *ProfileService) DeleteExperience(ctx context.Context, identity, experienceID string) (*model.Profile, error) {
	p, err := s.repo.DeleteExperience(ctx, identity, experienceID)
	switch {
	case errors.Is(err, repository.ErrProfileNotFound):
		return nil, apperror.NotFoundMessage(MsgProfileNotFound)
	case errors.Is(err, repository.ErrExperienceNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("service/profile: deleting experience %s: %w", experienceID, err)
	}
	return p, nil
}

// GetOwn returns the caller's profile joined with their name and avatar.
func (s *ProfileService) GetOwn(ctx context.Context, identity string) (*model.Profile, error) {
	p, err := s.repo.GetProfile(ctx, identity)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.NotFoundMessage(MsgNoOwnProfile)
	}
	if err != nil {
		return nil, fmt.Errorf("service/profile: getting profile of %s: %w", identity, err)
	}
	return p, nil
}

// GetByIdentity is the public profile lookup. A reference that is not a
// well-formed identity id gets the same answer as an unknown one.
func (s *ProfileService) GetByIdentity(ctx context.Context, ref string) (*model.Profile, error) {
	if _, err := xid.FromString(ref); err != nil {
		return nil, apperror.NotFoundMessage(MsgProfileNotFound)
	}

	p, err := s.repo.GetProfile(ctx, ref)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NotFoundMessage(MsgProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("service/profile: getting profile of %s: %w", ref, err)
	}
	return p, nil
}

// List returns every profile. There is no pagination.
func (s *ProfileService) List(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing profiles: %w", err)
	}
	return profiles, nil
}

// DeleteOwn removes the caller's profile and then their identity. Both go or
// neither does. Deleting an already deleted account succeeds.
func (s *ProfileService) DeleteOwn(ctx context.Context, identity string) error {
	if err := s.repo.DeleteProfileAndUser(ctx, identity); err != nil {
		return fmt.Errorf("service/profile: deleting account %s: %w", identity, err)
	}
	s.logger.Info("account deleted", slog.String("userID", identity))
	return nil
}

// GitHubRepos lists the latest public repositories of a GitHub user.
func (s *ProfileService) GitHubRepos(ctx context.Context, username string) ([]github.Repo, error) {
	username = strings.TrimSpace(username)
	if username == "" || s.repos == nil {
		return nil, apperror.NotFoundMessage(MsgNoGitHubProfile)
	}

	repos, err := s.repos.Repos(ctx, username)
	if errors.Is(err, github.ErrUserNotFound) {
		return nil, apperror.NotFoundMessage(MsgNoGitHubProfile)
	}
	if err != nil {
		return nil, fmt.Errorf("service/profile: github repos of %s: %w", username, err)
	}
	return repos, nil
}

func optionPtr(o mo.Option[string]) *string {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}
