package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/libraria-api/internal/domain"
	"github.com/libraria-api/internal/pkg/id"
)

// Store is the minimal interface the service requires from the
// notifications table.
type Store interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListActive(ctx context.Context) ([]domain.Notification, error)
	Deactivate(ctx context.Context, notificationID string) error
	Activate(ctx context.Context, notificationID string) error
}

// RecordRequest describes a history entry to append. Subject references are
// optional: custom announcements have none.
type RecordRequest struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Type        domain.NotificationType
	BookID      *string
	QuizID      *string
	ImageURL    string
}

// Service is the notification record store: an append-only history feed
// backing the mobile client's notification list. Records are never updated
// after creation; hiding one flips its active flag.
type Service interface {
	Record(ctx context.Context, req RecordRequest) (*domain.Notification, error)
	ListActive(ctx context.Context) ([]domain.Notification, error)
	Deactivate(ctx context.Context, notificationIDs []string) (int, error)
	Activate(ctx context.Context, notificationIDs []string) (int, error)
}

type service struct {
	repo Store
}

func NewService(repo Store) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, req RecordRequest) (*domain.Notification, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown notification type %q: %w", req.Type, domain.ErrBadRequest)
	}
	n := &domain.Notification{
		NotificationID: id.New(),
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		BookID:         req.BookID,
		QuizID:         req.QuizID,
		ImageURL:       req.ImageURL,
		CreatedAt:      time.Now().UTC(),
		Active:         1,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("append notification record: %w", err)
	}
	return n, nil
}

func (s *service) ListActive(ctx context.Context) ([]domain.Notification, error) {
	return s.repo.ListActive(ctx)
}

// Deactivate hides the given records and returns how many were processed.
// Records already inactive are processed again without effect.
func (s *service) Deactivate(ctx context.Context, notificationIDs []string) (int, error) {
	count := 0
	for _, nid := range notificationIDs {
		if err := s.repo.Deactivate(ctx, nid); err != nil {
			return count, fmt.Errorf("deactivate %s: %w", nid, err)
		}
		count++
	}
	return count, nil
}

// Activate re-shows previously hidden records. Records already visible are
// processed again without effect.
func (s *service) Activate(ctx context.Context, notificationIDs []string) (int, error) {
	count := 0
	for _, nid := range notificationIDs {
		if err := s.repo.Activate(ctx, nid); err != nil {
			return count, fmt.Errorf("activate %s: %w", nid, err)
		}
		count++
	}
	return count, nil
}
