package identity

import "context"

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	return s.store.ListTeams(ctx)
}

func (s *Service) ListActiveUsers(ctx context.Context) ([]User, error) {
	return s.store.ListActiveUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *Service) ActiveMembers(ctx context.Context) ([]Member, error) {
	return s.store.ActiveMembers(ctx)
}

func (s *Service) MemberByID(ctx context.Context, userID string) (Member, error) {
	return s.store.MemberByID(ctx, userID)
}

func (s *Service) ActiveUserIDs(ctx context.Context) ([]string, error) {
	return s.store.ActiveUserIDs(ctx)
}
