package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name FROM teams ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var team Team
		if err := rows.Scan(&team.ID, &team.Name); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (s *Store) ListActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, email, role, is_active
    FROM users
    WHERE is_active = true
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	index := map[string]int{}
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Active); err != nil {
			return nil, err
		}
		index[user.ID] = len(users)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberships, err := s.memberships(ctx, "")
	if err != nil {
		return nil, err
	}
	for userID, teams := range memberships {
		if i, ok := index[userID]; ok {
			users[i].Teams = teams
		}
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, role, is_active
    FROM users
    WHERE id = $1
  `, userID).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	memberships, err := s.memberships(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.Teams = memberships[userID]
	return user, nil
}

func (s *Store) ActiveMembers(ctx context.Context) ([]Member, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.role, COALESCE(array_agg(ut.team_id::text) FILTER (WHERE ut.team_id IS NOT NULL), '{}')
    FROM users u
    LEFT JOIN user_teams ut ON ut.user_id = u.id
    WHERE u.is_active = true
    GROUP BY u.id, u.role
    ORDER BY u.id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var member Member
		if err := rows.Scan(&member.UserID, &member.Role, &member.TeamIDs); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (s *Store) MemberByID(ctx context.Context, userID string) (Member, error) {
	var member Member
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.role, COALESCE(array_agg(ut.team_id::text) FILTER (WHERE ut.team_id IS NOT NULL), '{}')
    FROM users u
    LEFT JOIN user_teams ut ON ut.user_id = u.id
    WHERE u.id = $1
    GROUP BY u.id, u.role
  `, userID).Scan(&member.UserID, &member.Role, &member.TeamIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, ErrUserNotFound
	}
	return member, err
}

func (s *Store) ActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM users WHERE is_active = true ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) memberships(ctx context.Context, userID string) (map[string][]Membership, error) {
	query := `
    SELECT ut.user_id, t.id, t.name, ut.is_primary
    FROM user_teams ut
    JOIN teams t ON t.id = ut.team_id
  `
	var args []any
	if userID != "" {
		query += " WHERE ut.user_id = $1"
		args = append(args, userID)
	}
	query += " ORDER BY ut.is_primary DESC, t.name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]Membership{}
	for rows.Next() {
		var uid string
		var m Membership
		if err := rows.Scan(&uid, &m.TeamID, &m.TeamName, &m.IsPrimary); err != nil {
			return nil, err
		}
		out[uid] = append(out[uid], m)
	}
	return out, rows.Err()
}
