package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

// upsertProfileSQL merges one sparse update into the profile row, or creates it.
//
// NULL in a parameter means "absent": COALESCE keeps the stored value. social is
// the exception and is always replaced. created_at is only written on insert,
// so re-applying the same update leaves the row unchanged.
const upsertProfileSQL = `
INSERT INTO profiles (user_id, company, website, location, bio, status, github_username, skills, social, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    company         = COALESCE(excluded.company, profiles.company),
    website         = COALESCE(excluded.website, profiles.website),
    location        = COALESCE(excluded.location, profiles.location),
    bio             = COALESCE(excluded.bio, profiles.bio),
    status          = COALESCE(excluded.status, profiles.status),
    github_username = COALESCE(excluded.github_username, profiles.github_username),
    skills          = COALESCE(excluded.skills, profiles.skills),
    social          = excluded.social`

const selectProfileSQL = `
SELECT p.user_id, COALESCE(u.name, ''), COALESCE(u.avatar, ''),
       p.company, p.website, p.location, p.bio, p.status, p.github_username,
       p.skills, p.social, p.created_at
FROM profiles p
LEFT JOIN users u ON u.id = p.user_id`

const selectExperienceSQL = `
SELECT id, user_id, title, company, location, from_date, to_date, is_current, description
FROM experiences`

// UpsertProfile runs the whole merge as one statement, so two concurrent upserts
// for the same identity can never create two rows or lose each other's fields.
func (db *DB) UpsertProfile(ctx context.Context, userID string, update repository.ProfileUpdate) (*model.Profile, error) {
	var skills sql.NullString
	if update.Skills != nil {
		b, err := json.Marshal(update.Skills)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: encoding skills: %w", err)
		}
		skills = sql.NullString{String: string(b), Valid: true}
	}

	social, err := json.Marshal(update.Social)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: encoding social: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, db.rebind(upsertProfileSQL),
		userID,
		nullString(update.Company),
		nullString(update.Website),
		nullString(update.Location),
		nullString(update.Bio),
		nullString(update.Status),
		nullString(update.GitHubUsername),
		skills,
		string(social),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: upserting profile %s: %w", userID, err)
	}

	return db.GetProfile(ctx, userID)
}

// GetProfile returns repository.ErrProfileNotFound if the identity has no profile.
func (db *DB) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return db.getProfile(ctx, db.conn, userID)
}

func (db *DB) getProfile(ctx context.Context, q dbtx, userID string) (*model.Profile, error) {
	p, err := scanProfile(q.QueryRowContext(ctx, db.rebind(selectProfileSQL+` WHERE p.user_id = ?`), userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting profile %s: %w", userID, err)
	}

	rows, err := q.QueryContext(ctx, db.rebind(selectExperienceSQL+` WHERE user_id = ? ORDER BY seq DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing experience of %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		exp, _, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scanning experience: %w", err)
		}
		p.Experience = append(p.Experience, *exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating experience: %w", err)
	}

	return p, nil
}

// ListProfiles returns every profile, oldest first.
//
// Profiles and experience are read with two queries rather than one per
// profile. The first result set is fully drained before the second query runs,
// which a single-connection pool requires.
func (db *DB) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := db.conn.QueryContext(ctx, selectProfileSQL+` ORDER BY p.created_at, p.user_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing profiles: %w", err)
	}

	profiles := []model.Profile{}
	index := map[string]int{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlstore: scanning profile: %w", err)
		}
		index[p.User.ID] = len(profiles)
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlstore: iterating profiles: %w", err)
	}
	rows.Close()

	if len(profiles) == 0 {
		return profiles, nil
	}

	expRows, err := db.conn.QueryContext(ctx, selectExperienceSQL+` ORDER BY user_id, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing experience: %w", err)
	}
	defer expRows.Close()

	for expRows.Next() {
		exp, owner, err := scanExperience(expRows)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scanning experience: %w", err)
		}
		if i, ok := index[owner]; ok {
			profiles[i].Experience = append(profiles[i].Experience, *exp)
		}
	}
	if err := expRows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating experience: %w", err)
	}

	return profiles, nil
}

// PrependExperience inserts exp ahead of every existing entry. exp.ID is
// assigned here.
//
// The position is MAX(seq)+1 under a lock on the profile row, so concurrent
// prepends for one identity are serialized and never collide on seq.
func (db *DB) PrependExperience(ctx context.Context, userID string, exp *model.Experience) (*model.Profile, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.lockProfile(ctx, tx, userID); err != nil {
		return nil, err
	}

	var seq int64
	err = tx.QueryRowContext(ctx, db.rebind(
		`SELECT COALESCE(MAX(seq), 0) FROM experiences WHERE user_id = ?`), userID,
	).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: reading experience position: %w", err)
	}

	exp.ID = xid.New().String()
	var to sql.NullTime
	if exp.To != nil {
		to = sql.NullTime{Time: exp.To.UTC(), Valid: true}
	}

	_, err = tx.ExecContext(ctx, db.rebind(
		`INSERT INTO experiences (id, user_id, seq, title, company, location, from_date, to_date, is_current, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		exp.ID,
		userID,
		seq+1,
		exp.Title,
		exp.Company,
		emptyToNull(exp.Location),
		exp.From.UTC(),
		to,
		exp.Current,
		emptyToNull(exp.Description),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: inserting experience: %w", err)
	}

	p, err := db.getProfile(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlstore: committing experience: %w", err)
	}
	return p, nil
}

// DeleteExperience removes one entry of the identity's own profile. An entry
// that exists under another profile is reported as not found.
func (db *DB) DeleteExperience(ctx context.Context, userID, experienceID string) (*model.Profile, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.lockProfile(ctx, tx, userID); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, db.rebind(
		`DELETE FROM experiences WHERE id = ? AND user_id = ?`), experienceID, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: deleting experience %s: %w", experienceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: deleting experience %s: %w", experienceID, err)
	}
	if n == 0 {
		return nil, repository.ErrExperienceNotFound
	}

	p, err := db.getProfile(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlstore: committing experience delete: %w", err)
	}
	return p, nil
}

// DeleteProfileAndUser removes experience, profile and identity together. If
// any statement fails nothing is deleted.
func (db *DB) DeleteProfileAndUser(ctx context.Context, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		what  string
		query string
	}{
		{"experience", `DELETE FROM experiences WHERE user_id = ?`},
		{"profile", `DELETE FROM profiles WHERE user_id = ?`},
		{"user", `DELETE FROM users WHERE id = ?`},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, db.rebind(s.query), userID); err != nil {
			return fmt.Errorf("sqlstore: deleting %s of %s: %w", s.what, userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing delete of %s: %w", userID, err)
	}
	return nil
}

func (db *DB) lockProfile(ctx context.Context, tx *sql.Tx, userID string) error {
	var id string
	err := tx.QueryRowContext(ctx, db.rebind(
		`SELECT user_id FROM profiles WHERE user_id = ?`+db.forUpdate()), userID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlstore: locking profile %s: %w", userID, err)
	}
	return nil
}

// scanner is the Scan method shared by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*model.Profile, error) {
	var (
		p                               model.Profile
		company, website, location, bio sql.NullString
		status, githubUsername, skills  sql.NullString
		social                          string
	)
	err := s.Scan(
		&p.User.ID,
		&p.User.Name,
		&p.User.Avatar,
		&company,
		&website,
		&location,
		&bio,
		&status,
		&githubUsername,
		&skills,
		&social,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Company = company.String
	p.Website = website.String
	p.Location = location.String
	p.Bio = bio.String
	p.Status = status.String
	p.GitHubUsername = githubUsername.String

	p.Skills = []string{}
	if skills.Valid && skills.String != "" {
		if err := json.Unmarshal([]byte(skills.String), &p.Skills); err != nil {
			return nil, fmt.Errorf("decoding skills: %w", err)
		}
	}
	if social != "" {
		if err := json.Unmarshal([]byte(social), &p.Social); err != nil {
			return nil, fmt.Errorf("decoding social: %w", err)
		}
	}
	p.Experience = []model.Experience{}

	return &p, nil
}

// scanExperience also returns the owning identity for grouping.
func scanExperience(s scanner) (*model.Experience, string, error) {
	var (
		e                     model.Experience
		owner                 string
		location, description sql.NullString
		to                    sql.NullTime
	)
	err := s.Scan(
		&e.ID,
		&owner,
		&e.Title,
		&e.Company,
		&location,
		&e.From,
		&to,
		&e.Current,
		&description,
	)
	if err != nil {
		return nil, "", err
	}

	e.Location = location.String
	e.Description = description.String
	if to.Valid {
		t := to.Time
		e.To = &t
	}
	return &e, owner, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func emptyToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
