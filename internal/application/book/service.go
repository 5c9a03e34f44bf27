package book

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/libraria-api/internal/domain"
	"github.com/libraria-api/internal/pkg/id"
)

// Store is the minimal interface the service requires from the books table.
type Store interface {
	Put(ctx context.Context, b *domain.Book) error
	Get(ctx context.Context, bookID string) (*domain.Book, error)
	Update(ctx context.Context, bookID string, updates map[string]interface{}) error
}

// CoverStore is the object storage backend for uploaded cover images.
type CoverStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	ObjectURL(key string) string
	Delete(ctx context.Context, key string) error
}

// CreateRequest carries the fields an administrator enters for a new book.
// Tracking fields are never accepted from the outside — they belong to the
// dispatcher.
type CreateRequest struct {
	Title      string `json:"title" validate:"required"`
	Author     string `json:"author" validate:"required"`
	Translator string `json:"translator"`
	Category   string `json:"category" validate:"required"`
	CoverImage string `json:"cover_image" validate:"omitempty,url"`
	PDFPath    string `json:"pdf_path" validate:"omitempty,url"`
	Active     *bool  `json:"is_active"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Book, error)
	Get(ctx context.Context, bookID string) (*domain.Book, error)
	UploadCover(ctx context.Context, bookID, filename string, r io.Reader, contentType string) (string, error)
	CoverURL(b *domain.Book) string
}

type service struct {
	repo   Store
	covers CoverStore
}

func NewService(repo Store, covers CoverStore) Service {
	return &service{repo: repo, covers: covers}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*domain.Book, error) {
	now := time.Now().UTC()
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	b := &domain.Book{
		BookID:     id.New(),
		Title:      req.Title,
		Author:     req.Author,
		Translator: req.Translator,
		Category:   req.Category,
		CoverImage: req.CoverImage,
		PDFPath:    req.PDFPath,
		Active:     active,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.repo.Get(ctx, bookID)
}

// UploadCover stores the image and records its key on the book via a partial
// update, leaving all other fields alone. Returns the resolved cover URL.
func (s *service) UploadCover(ctx context.Context, bookID, filename string, r io.Reader, contentType string) (string, error) {
	b, err := s.repo.Get(ctx, bookID)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("covers/%s/%s", bookID, filename)
	if err := s.covers.Upload(ctx, key, r, contentType); err != nil {
		return "", fmt.Errorf("upload cover: %w", err)
	}
	updates := map[string]interface{}{
		"cover_key":  key,
		"updated_at": time.Now().UTC(),
	}
	if err := s.repo.Update(ctx, bookID, updates); err != nil {
		return "", fmt.Errorf("record cover key: %w", err)
	}
	if b.CoverKey != "" && b.CoverKey != key {
		// Stale cover cleanup is best effort; the book already points at
		// the new key.
		_ = s.covers.Delete(ctx, b.CoverKey)
	}
	return s.covers.ObjectURL(key), nil
}

// CoverURL resolves a book's cover: an uploaded asset wins over the external
// URL; both absent yields "".
func (s *service) CoverURL(b *domain.Book) string {
	if s.covers == nil {
		return b.CoverImage
	}
	return b.CoverURL(s.covers.ObjectURL)
}
