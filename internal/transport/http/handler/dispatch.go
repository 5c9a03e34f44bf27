package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/libraria-api/internal/application/dispatch"
	"github.com/libraria-api/internal/application/notification"
	"github.com/libraria-api/internal/domain"
	"github.com/libraria-api/internal/pkg/validate"
)

// BookGetter and QuizGetter verify subject references on custom dispatches.
type BookGetter interface {
	Get(ctx context.Context, bookID string) (*domain.Book, error)
}

type QuizGetter interface {
	Get(ctx context.Context, quizID string) (*domain.Quiz, error)
}

// DispatchHandler exposes the notification trigger points: single-entity
// sends, batch sends with aggregate counts, custom announcements, and
// tracking resets.
type DispatchHandler struct {
	svc     dispatch.Service
	records notification.Service
	books   BookGetter
	quizzes QuizGetter
}

func NewDispatchHandler(svc dispatch.Service, records notification.Service, books BookGetter, quizzes QuizGetter) *DispatchHandler {
	return &DispatchHandler{svc: svc, records: records, books: books, quizzes: quizzes}
}

// Book sends a push for one book. It sends unconditionally: re-sending an
// already-notified book is an explicit administrative choice here, while the
// batch endpoint skips such books.
func (h *DispatchHandler) Book(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, func() (string, error) {
		return h.svc.ForBook(r.Context(), chi.URLParam(r, "id"))
	})
}

// Quiz sends a push for one quiz, unconditionally, like Book.
func (h *DispatchHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, func() (string, error) {
		return h.svc.ForQuiz(r.Context(), chi.URLParam(r, "id"))
	})
}

func (h *DispatchHandler) single(w http.ResponseWriter, r *http.Request, send func() (string, error)) {
	msgID, err := send()
	if err != nil {
		// Unknown entity is a validation failure; anything else is the
		// provider's error text, reported without aborting request handling.
		if isDomainErr(err) {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusBadGateway, DispatchEnvelope{Sent: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, DispatchEnvelope{Sent: true, MessageID: msgID})
}

type batchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BookBatch dispatches for many books at once. Entities are attempted
// independently; the response tallies sent / already_sent / inactive / failed.
func (h *DispatchHandler) BookBatch(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Books(r.Context(), ids))
}

// QuizBatch mirrors BookBatch for quizzes.
func (h *DispatchHandler) QuizBatch(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Quizzes(r.Context(), ids))
}

type customRequest struct {
	dispatch.CustomRequest
	// Record appends a history entry on success; subject references and type
	// are the administrator's to choose.
	Record   bool                    `json:"record"`
	Type     domain.NotificationType `json:"type"`
	BookID   *string                 `json:"book_id"`
	QuizID   *string                 `json:"quiz_id"`
	ImageURL string                  `json:"image_url"`
}

// Custom sends an administrator-composed notification. No tracking fields
// are touched; a history record is appended only when requested.
func (h *DispatchHandler) Custom(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req.CustomRequest); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	typ := req.Type
	if typ == "" {
		typ = domain.NotificationAnnouncement
	}
	if req.Record && !typ.Valid() {
		writeError(w, http.StatusBadRequest, "unknown notification type")
		return
	}
	// A subject reference must name a stored entity before anything is sent:
	// a dangling id would otherwise still push and leave a broken record.
	if req.BookID != nil {
		if _, err := h.books.Get(r.Context(), *req.BookID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "unknown book reference")
				return
			}
			httpError(w, err)
			return
		}
	}
	if req.QuizID != nil {
		if _, err := h.quizzes.Get(r.Context(), *req.QuizID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "unknown quiz reference")
				return
			}
			httpError(w, err)
			return
		}
	}

	msgID, err := h.svc.Custom(r.Context(), req.CustomRequest)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, DispatchEnvelope{Sent: false, Error: err.Error()})
		return
	}

	if req.Record {
		_, err := h.records.Record(r.Context(), notification.RecordRequest{
			Title:       req.Title,
			Description: req.Body,
			Type:        typ,
			BookID:      req.BookID,
			QuizID:      req.QuizID,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			// The push went out; surface the partial failure instead of a 502.
			writeJSON(w, http.StatusOK, DispatchEnvelope{Sent: true, MessageID: msgID, Error: "record not appended: " + err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, DispatchEnvelope{Sent: true, MessageID: msgID})
}

// ResetBook clears a book's tracking fields (administrative re-test path).
func (h *DispatchHandler) ResetBook(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetBook(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification tracking reset"})
}

// ResetQuiz mirrors ResetBook.
func (h *DispatchHandler) ResetQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetQuiz(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification tracking reset"})
}

func decodeBatch(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req.IDs, true
}
