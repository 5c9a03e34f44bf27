package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/libraria-api/internal/domain"
	"github.com/libraria-api/internal/pkg/id"
)

// Store is the minimal interface the service requires from the quizzes table.
type Store interface {
	Put(ctx context.Context, q *domain.Quiz) error
	Get(ctx context.Context, quizID string) (*domain.Quiz, error)
}

// QuestionStore is the minimal interface the service requires from the
// questions table.
type QuestionStore interface {
	Put(ctx context.Context, q *domain.Question) error
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// BookGetter verifies the parent book reference on quiz creation.
type BookGetter interface {
	Get(ctx context.Context, bookID string) (*domain.Book, error)
}

// CreateRequest carries the fields for a new quiz. The ID is caller-supplied
// because the mobile client's content bundle references quizzes by fixed IDs.
type CreateRequest struct {
	QuizID string `json:"id" validate:"required"`
	BookID string `json:"book_id" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Active *bool  `json:"is_active"`
}

// AddQuestionRequest carries one question with its inline answer options.
type AddQuestionRequest struct {
	Text               string   `json:"text" validate:"required"`
	Options            []string `json:"options" validate:"required,min=2"`
	CorrectOptionIndex int      `json:"correct_option_index" validate:"gte=0"`
	Order              int      `json:"order"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Quiz, error)
	Get(ctx context.Context, quizID string) (*domain.Quiz, error)
	AddQuestion(ctx context.Context, quizID string, req AddQuestionRequest) (*domain.Question, error)
	Questions(ctx context.Context, quizID string) ([]domain.Question, error)
}

type service struct {
	repo      Store
	questions QuestionStore
	books     BookGetter
}

func NewService(repo Store, questions QuestionStore, books BookGetter) Service {
	return &service{repo: repo, questions: questions, books: books}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*domain.Quiz, error) {
	if _, err := s.books.Get(ctx, req.BookID); err != nil {
		return nil, fmt.Errorf("parent book: %w", err)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	q := &domain.Quiz{
		QuizID:    req.QuizID,
		BookID:    req.BookID,
		Title:     req.Title,
		Active:    active,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, q); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return q, nil
}

func (s *service) Get(ctx context.Context, quizID string) (*domain.Quiz, error) {
	return s.repo.Get(ctx, quizID)
}

func (s *service) AddQuestion(ctx context.Context, quizID string, req AddQuestionRequest) (*domain.Question, error) {
	if _, err := s.repo.Get(ctx, quizID); err != nil {
		return nil, err
	}
	if req.CorrectOptionIndex >= len(req.Options) {
		return nil, fmt.Errorf("correct_option_index out of range: %w", domain.ErrBadRequest)
	}
	q := &domain.Question{
		QuestionID:         id.New(),
		QuizID:             quizID,
		Text:               req.Text,
		Options:            req.Options,
		CorrectOptionIndex: req.CorrectOptionIndex,
		Order:              req.Order,
	}
	if err := s.questions.Put(ctx, q); err != nil {
		return nil, fmt.Errorf("add question: %w", err)
	}
	return q, nil
}

func (s *service) Questions(ctx context.Context, quizID string) ([]domain.Question, error) {
	return s.questions.ListByQuiz(ctx, quizID)
}
