// Package repository declares the storage contracts the service layer depends on.
// Implementations live in sub-packages (see repository/sqlstore).
package repository

import (
	"context"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
)

// Not-found errors with a fixed client message. Both wrap apperror.ErrNotFound,
// so callers can match either the specific value or the kind.
var (
	ErrProfileNotFound    = apperror.NotFoundMessage("There is no profile for this user")
	ErrExperienceNotFound = apperror.NotFoundMessage("Experience not found")
)

// UserRepository stores identities.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProfileUpdate is the sparse document of one upsert. A nil pointer means the
// field is absent and the stored value must be kept. Social is always written.
type ProfileUpdate struct {
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GitHubUsername *string
	Skills         []string // nil = absent
	Social         model.Social
}

// ProfileRepository stores profiles keyed by the owning identity.
//
// Every read returns the profile joined with the owner's name and avatar, and
// its experience list most recent first. A missing profile is reported as
// ErrProfileNotFound.
type ProfileRepository interface {
	// UpsertProfile creates the profile or merges the update into it in one
	// atomic statement, then returns the stored profile.
	UpsertProfile(ctx context.Context, userID string, update ProfileUpdate) (*model.Profile, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	// PrependExperience adds exp at the head of the list. The profile must exist.
	PrependExperience(ctx context.Context, userID string, exp *model.Experience) (*model.Profile, error)
	DeleteExperience(ctx context.Context, userID, experienceID string) (*model.Profile, error)
	// DeleteProfileAndUser removes the profile, then the identity, in one
	// transaction. Missing rows are not an error.
	DeleteProfileAndUser(ctx context.Context, userID string) error
}
