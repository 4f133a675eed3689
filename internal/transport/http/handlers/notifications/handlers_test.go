package notificationshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eval360/internal/domain/auth"
	"eval360/internal/domain/notifications"
	"eval360/internal/transport/http/middleware"
)

type memInbox struct {
	items map[string][]notifications.Notification
	limit int
}

func (m *memInbox) List(_ context.Context, userID string, limit, offset int) ([]notifications.Notification, error) {
	m.limit = limit
	items := m.items[userID]
	if offset >= len(items) {
		return nil, nil
	}
	return items[offset:min(len(items), offset+limit)], nil
}

func (m *memInbox) Count(_ context.Context, userID string) (int, error) {
	return len(m.items[userID]), nil
}

func (m *memInbox) MarkRead(_ context.Context, userID, notificationID string) error {
	for i, n := range m.items[userID] {
		if n.ID == notificationID {
			now := time.Now()
			m.items[userID][i].ReadAt = &now
			return nil
		}
	}
	return notifications.ErrNotificationNotFound
}

func serve(h *Handler, userID, method, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: userID})))
		})
	})
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNotificationsInbox(t *testing.T) {
	inbox := &memInbox{items: map[string][]notifications.Notification{
		"u-ana": {
			{ID: "n-1", Type: notifications.TypeReviewPeriodOpened, Title: "Avaliação 2026 aberta"},
			{ID: "n-2", Type: notifications.TypeReviewPeriodOpened, Title: "Avaliação 2025 aberta"},
		},
	}}
	h := NewHandler(inbox)

	rec := serve(h, "u-ana", http.MethodGet, "/notifications?limit=9999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, 500, inbox.limit)

	rec = serve(h, "u-bruno", http.MethodGet, "/notifications")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = serve(h, "u-ana", http.MethodPost, "/notifications/n-1/read")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, inbox.items["u-ana"][0].ReadAt)

	rec = serve(h, "u-bruno", http.MethodPost, "/notifications/n-1/read")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
