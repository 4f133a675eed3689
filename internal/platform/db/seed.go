package db

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"

	"eval360/internal/domain/auth"
	"eval360/internal/domain/catalog"
	"eval360/internal/domain/identity"
	"eval360/internal/domain/periods"
	"eval360/internal/platform/config"
)

//go:embed seed/catalog.yaml
var catalogYAML []byte

const devSeedPassword = "1234"

type SeedUser struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type SeedCompetency struct {
	Name           string  `yaml:"name"`
	Description    string  `yaml:"description"`
	Category       string  `yaml:"category"`
	Team           string  `yaml:"team"`
	LeadershipOnly bool    `yaml:"leadership_only"`
	Weight         float64 `yaml:"weight"`
}

type SeedCatalog struct {
	Teams        []string            `yaml:"teams"`
	Users        []SeedUser          `yaml:"users"`
	Memberships  map[string][]string `yaml:"memberships"`
	Competencies []SeedCompetency    `yaml:"competencies"`
}

// ParseSeedCatalog decodes and checks a seed file. Weight defaults to 1.
func ParseSeedCatalog(data []byte) (SeedCatalog, error) {
	var sc SeedCatalog
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return SeedCatalog{}, fmt.Errorf("parse seed catalog: %w", err)
	}
	for i := range sc.Competencies {
		if sc.Competencies[i].Weight == 0 {
			sc.Competencies[i].Weight = 1
		}
	}
	if err := sc.validate(); err != nil {
		return SeedCatalog{}, err
	}
	return sc, nil
}

func (sc SeedCatalog) validate() error {
	teams := map[string]struct{}{}
	for _, t := range sc.Teams {
		teams[t] = struct{}{}
	}
	emails := map[string]struct{}{}
	for _, u := range sc.Users {
		if !identity.ValidRole(u.Role) {
			return fmt.Errorf("seed user %s: unknown role %q", u.Email, u.Role)
		}
		if _, dup := emails[u.Email]; dup {
			return fmt.Errorf("seed user %s: duplicate email", u.Email)
		}
		emails[u.Email] = struct{}{}
	}
	for team, members := range sc.Memberships {
		if _, ok := teams[team]; !ok {
			return fmt.Errorf("seed memberships: unknown team %q", team)
		}
		for _, email := range members {
			if _, ok := emails[email]; !ok {
				return fmt.Errorf("seed memberships: unknown user %q in %s", email, team)
			}
		}
	}
	for _, c := range sc.Competencies {
		if c.Team != "" {
			if _, ok := teams[c.Team]; !ok {
				return fmt.Errorf("seed competency %q: unknown team %q", c.Name, c.Team)
			}
		}
		comp := catalog.Competency{Name: c.Name, Category: c.Category, TeamID: c.Team, LeadershipOnly: c.LeadershipOnly, Weight: c.Weight}
		if err := comp.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Seed loads the embedded organisation. Every step is insert-or-ignore or
// guarded by an emptiness check, so it can run on every start.
func Seed(ctx context.Context, pool *Pool, cfg config.Config) error {
	sc, err := ParseSeedCatalog(catalogYAML)
	if err != nil {
		return err
	}

	password := strings.TrimSpace(cfg.SeedPassword)
	if password == "" {
		slog.Warn("SEED_PASSWORD not set, seeding users with the development password")
		password = devSeedPassword
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	teamIDs, err := ensureTeams(ctx, tx, sc.Teams)
	if err != nil {
		return err
	}
	if err := ensureUsers(ctx, tx, sc.Users, password); err != nil {
		return err
	}
	if err := ensureMemberships(ctx, tx, sc.Memberships, teamIDs); err != nil {
		return err
	}
	if err := ensureCompetencies(ctx, tx, sc.Competencies, teamIDs); err != nil {
		return err
	}
	if err := ensureActivePeriod(ctx, tx, time.Now()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func ensureTeams(ctx context.Context, tx pgx.Tx, names []string) (map[string]string, error) {
	for _, name := range names {
		if _, err := tx.Exec(ctx, "INSERT INTO teams (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name); err != nil {
			return nil, err
		}
	}
	rows, err := tx.Query(ctx, "SELECT id::text, name FROM teams")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

func tableEmpty(ctx context.Context, tx pgx.Tx, table string) (bool, error) {
	var n int
	if err := tx.QueryRow(ctx, "SELECT COUNT(1) FROM "+table).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

func ensureUsers(ctx context.Context, tx pgx.Tx, users []SeedUser, password string) error {
	empty, err := tableEmpty(ctx, tx, "users")
	if err != nil || !empty {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	for _, u := range users {
		if _, err := tx.Exec(ctx, `
      INSERT INTO users (name, email, password_hash, role)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (email) DO NOTHING
    `, u.Name, strings.ToLower(u.Email), hash, u.Role); err != nil {
			return err
		}
	}
	return nil
}

func ensureMemberships(ctx context.Context, tx pgx.Tx, memberships map[string][]string, teamIDs map[string]string) error {
	empty, err := tableEmpty(ctx, tx, "user_teams")
	if err != nil || !empty {
		return err
	}
	for team, emails := range memberships {
		teamID, ok := teamIDs[team]
		if !ok {
			continue
		}
		for i, email := range emails {
			if _, err := tx.Exec(ctx, `
        INSERT INTO user_teams (user_id, team_id, is_primary)
        SELECT u.id, $2, $3 FROM users u WHERE lower(u.email) = lower($1)
        ON CONFLICT (user_id, team_id) DO NOTHING
      `, email, teamID, i == 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureCompetencies(ctx context.Context, tx pgx.Tx, comps []SeedCompetency, teamIDs map[string]string) error {
	empty, err := tableEmpty(ctx, tx, "competencies")
	if err != nil || !empty {
		return err
	}
	for _, c := range comps {
		var teamID any
		if c.Team != "" {
			teamID = teamIDs[c.Team]
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO competencies (name, description, category, team_id, leadership_only, weight)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, c.Name, c.Description, c.Category, teamID, c.LeadershipOnly, c.Weight); err != nil {
			return err
		}
	}
	return nil
}

func ensureActivePeriod(ctx context.Context, tx pgx.Tx, now time.Time) error {
	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM evaluation_periods WHERE is_active = true)").Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	_, err := tx.Exec(ctx, `
    INSERT INTO evaluation_periods (name, start_date, end_date, is_active)
    VALUES ($1,$2,$2,true)
  `, periods.DefaultName(today), today)
	return err
}
