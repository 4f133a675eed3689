package notifications

import "context"

type StoreAPI interface {
	CreateNotifications(ctx context.Context, userIDs []string, ntype, title, body string) error
	ActiveRecipients(ctx context.Context) ([]Recipient, error)
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	CountNotifications(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}
