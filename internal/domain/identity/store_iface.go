package identity

import "context"

type StoreAPI interface {
	ListTeams(ctx context.Context) ([]Team, error)
	ListActiveUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, userID string) (User, error)
	ActiveMembers(ctx context.Context) ([]Member, error)
	MemberByID(ctx context.Context, userID string) (Member, error)
	ActiveUserIDs(ctx context.Context) ([]string, error)
}
