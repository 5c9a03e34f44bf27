package dispatch

import (
	"context"
	"fmt"
	"time"

	notifapp "github.com/libraria-api/internal/application/notification"
	"github.com/libraria-api/internal/domain"
	"github.com/libraria-api/internal/infrastructure/push"
	"go.uber.org/zap"
)

// BookStore is the collaborator surface the dispatcher needs from the books
// table: entity lookup plus the two tracking writes it owns.
type BookStore interface {
	Get(ctx context.Context, bookID string) (*domain.Book, error)
	MarkNotified(ctx context.Context, bookID string, at time.Time) error
	ResetNotification(ctx context.Context, bookID string) error
}

// QuizStore mirrors BookStore for quizzes.
type QuizStore interface {
	Get(ctx context.Context, quizID string) (*domain.Quiz, error)
	MarkNotified(ctx context.Context, quizID string, at time.Time) error
	ResetNotification(ctx context.Context, quizID string) error
}

// QuestionCounter counts a quiz's questions at dispatch time.
type QuestionCounter interface {
	CountByQuiz(ctx context.Context, quizID string) (int, error)
}

// Recorder appends history entries after successful dispatches.
type Recorder interface {
	Record(ctx context.Context, req notifapp.RecordRequest) (*domain.Notification, error)
}

// CustomRequest is an administrator-composed notification not tied to an
// entity template. The dispatcher never touches tracking fields for it, and
// the caller decides whether a history record is created.
type CustomRequest struct {
	Title string                 `json:"title" validate:"required"`
	Body  string                 `json:"body" validate:"required"`
	Data  map[string]interface{} `json:"data"`
	Topic string                 `json:"topic"`
}

// BatchResult aggregates a batch dispatch: every entity is attempted
// independently, so one failure never aborts the rest.
type BatchResult struct {
	Sent        int `json:"sent"`
	AlreadySent int `json:"already_sent"`
	Inactive    int `json:"inactive"`
	Failed      int `json:"failed"`
}

// Service is the notification dispatcher. ForBook and ForQuiz are
// always-fires primitives: they send unconditionally and perform no
// deduplication. Skip-if-already-sent policy belongs to the trigger points
// (the batch operations here apply it; the single-entity operations do not,
// so an administrator can deliberately re-send).
type Service interface {
	ForBook(ctx context.Context, bookID string) (string, error)
	ForQuiz(ctx context.Context, quizID string) (string, error)
	Custom(ctx context.Context, req CustomRequest) (string, error)
	Books(ctx context.Context, bookIDs []string) BatchResult
	Quizzes(ctx context.Context, quizIDs []string) BatchResult
	ResetBook(ctx context.Context, bookID string) error
	ResetQuiz(ctx context.Context, quizID string) error
}

// ServiceDeps holds the dispatcher's collaborators.
type ServiceDeps struct {
	Books     BookStore
	Quizzes   QuizStore
	Questions QuestionCounter
	Sender    push.Sender
	Records   Recorder

	// CoverURL resolves a book's cover (uploaded asset or external URL).
	// Nil falls back to the external URL field.
	CoverURL func(b *domain.Book) string

	DefaultTopic string
	Logger       *zap.Logger
}

type service struct {
	books     BookStore
	quizzes   QuizStore
	questions QuestionCounter
	sender    push.Sender
	records   Recorder
	coverURL  func(b *domain.Book) string
	topic     string
	log       *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	coverURL := deps.CoverURL
	if coverURL == nil {
		coverURL = func(b *domain.Book) string { return b.CoverImage }
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		books:     deps.Books,
		quizzes:   deps.Quizzes,
		questions: deps.Questions,
		sender:    deps.Sender,
		records:   deps.Records,
		coverURL:  coverURL,
		topic:     deps.DefaultTopic,
		log:       log,
	}
}

func (s *service) ForBook(ctx context.Context, bookID string) (string, error) {
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return "", err
	}
	return s.dispatchBook(ctx, b)
}

func (s *service) ForQuiz(ctx context.Context, quizID string) (string, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return "", err
	}
	return s.dispatchQuiz(ctx, q)
}

func (s *service) Custom(ctx context.Context, req CustomRequest) (string, error) {
	p := CustomPayload{NotificationTitle: req.Title, NotificationBody: req.Body, Data: req.Data}
	topic := req.Topic
	if topic == "" {
		topic = s.topic
	}
	return s.send(ctx, p, topic)
}

// Books attempts a dispatch for every active, not-yet-notified book in
// bookIDs and tallies the outcomes. The gateway is only called for eligible
// books.
func (s *service) Books(ctx context.Context, bookIDs []string) BatchResult {
	var res BatchResult
	for _, bid := range bookIDs {
		b, err := s.books.Get(ctx, bid)
		if err != nil {
			s.log.Warn("batch dispatch: book lookup failed", zap.String("book_id", bid), zap.Error(err))
			res.Failed++
			continue
		}
		switch {
		case !b.Active:
			res.Inactive++
		case b.NotificationSent:
			res.AlreadySent++
		default:
			if _, err := s.dispatchBook(ctx, b); err != nil {
				res.Failed++
			} else {
				res.Sent++
			}
		}
	}
	return res
}

// Quizzes mirrors Books for quiz entities.
func (s *service) Quizzes(ctx context.Context, quizIDs []string) BatchResult {
	var res BatchResult
	for _, qid := range quizIDs {
		q, err := s.quizzes.Get(ctx, qid)
		if err != nil {
			s.log.Warn("batch dispatch: quiz lookup failed", zap.String("quiz_id", qid), zap.Error(err))
			res.Failed++
			continue
		}
		switch {
		case !q.Active:
			res.Inactive++
		case q.NotificationSent:
			res.AlreadySent++
		default:
			if _, err := s.dispatchQuiz(ctx, q); err != nil {
				res.Failed++
			} else {
				res.Sent++
			}
		}
	}
	return res
}

// ResetBook clears the book's tracking fields so dispatch can be re-tested.
// This is the one sanctioned exception to the counter's monotonicity.
func (s *service) ResetBook(ctx context.Context, bookID string) error {
	if _, err := s.books.Get(ctx, bookID); err != nil {
		return err
	}
	return s.books.ResetNotification(ctx, bookID)
}

// ResetQuiz mirrors ResetBook.
func (s *service) ResetQuiz(ctx context.Context, quizID string) error {
	if _, err := s.quizzes.Get(ctx, quizID); err != nil {
		return err
	}
	return s.quizzes.ResetNotification(ctx, quizID)
}

func (s *service) dispatchBook(ctx context.Context, b *domain.Book) (string, error) {
	p := BookPayload{
		BookID:     b.BookID,
		BookTitle:  b.Title,
		Author:     b.Author,
		Category:   b.Category,
		CoverImage: s.coverURL(b),
	}
	msgID, err := s.send(ctx, p, s.topic)
	if err != nil {
		// Tracking fields stay untouched so a retry is safe.
		return "", err
	}

	if err := s.books.MarkNotified(ctx, b.BookID, time.Now().UTC()); err != nil {
		return msgID, fmt.Errorf("push %s delivered but tracking update failed: %w", msgID, err)
	}

	s.appendRecord(ctx, notifapp.RecordRequest{
		Title:       p.Title(),
		Description: p.Body(),
		Type:        domain.NotificationNewBook,
		BookID:      &b.BookID,
		ImageURL:    p.CoverImage,
	})
	return msgID, nil
}

func (s *service) dispatchQuiz(ctx context.Context, q *domain.Quiz) (string, error) {
	b, err := s.books.Get(ctx, q.BookID)
	if err != nil {
		return "", fmt.Errorf("parent book of quiz %s: %w", q.QuizID, err)
	}
	count, err := s.questions.CountByQuiz(ctx, q.QuizID)
	if err != nil {
		return "", fmt.Errorf("count questions of quiz %s: %w", q.QuizID, err)
	}

	p := QuizPayload{
		QuizID:        q.QuizID,
		QuizTitle:     q.Title,
		BookID:        b.BookID,
		BookTitle:     b.Title,
		Category:      b.Category,
		CoverImage:    s.coverURL(b),
		QuestionCount: count,
	}
	msgID, err := s.send(ctx, p, s.topic)
	if err != nil {
		return "", err
	}

	if err := s.quizzes.MarkNotified(ctx, q.QuizID, time.Now().UTC()); err != nil {
		return msgID, fmt.Errorf("push %s delivered but tracking update failed: %w", msgID, err)
	}

	s.appendRecord(ctx, notifapp.RecordRequest{
		Title:       p.Title(),
		Description: p.Body(),
		Type:        domain.NotificationNewQuiz,
		BookID:      &b.BookID,
		QuizID:      &q.QuizID,
		ImageURL:    p.CoverImage,
	})
	return msgID, nil
}

func (s *service) send(ctx context.Context, p Payload, topic string) (string, error) {
	msg := push.Message{
		Title: p.Title(),
		Body:  p.Body(),
		Data:  p.Wire(),
		Topic: topic,
	}
	s.log.Info("sending notification",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.String("topic", topic),
		zap.Any("data", msg.Data),
	)

	msgID, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.log.Error("push delivery failed", zap.String("topic", topic), zap.Error(err))
		return "", err
	}
	s.log.Info("push delivered", zap.String("message_id", msgID))
	return msgID, nil
}

// appendRecord feeds the history list. The tracker is the source of truth
// for "was sent", so a record append failure is logged and swallowed.
func (s *service) appendRecord(ctx context.Context, req notifapp.RecordRequest) {
	if s.records == nil {
		return
	}
	if _, err := s.records.Record(ctx, req); err != nil {
		s.log.Warn("notification record not appended", zap.String("title", req.Title), zap.Error(err))
	}
}
