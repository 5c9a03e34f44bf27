package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/libraria-api/internal/application/dispatch"
	"github.com/libraria-api/internal/application/notification"
	"github.com/libraria-api/internal/domain"
)

// --- mocks ---

type mockDispatchSvc struct{ mock.Mock }

func (m *mockDispatchSvc) ForBook(ctx context.Context, bookID string) (string, error) {
	args := m.Called(ctx, bookID)
	return args.String(0), args.Error(1)
}

func (m *mockDispatchSvc) ForQuiz(ctx context.Context, quizID string) (string, error) {
	args := m.Called(ctx, quizID)
	return args.String(0), args.Error(1)
}

func (m *mockDispatchSvc) Custom(ctx context.Context, req dispatch.CustomRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockDispatchSvc) Books(ctx context.Context, bookIDs []string) dispatch.BatchResult {
	return m.Called(ctx, bookIDs).Get(0).(dispatch.BatchResult)
}

func (m *mockDispatchSvc) Quizzes(ctx context.Context, quizIDs []string) dispatch.BatchResult {
	return m.Called(ctx, quizIDs).Get(0).(dispatch.BatchResult)
}

func (m *mockDispatchSvc) ResetBook(ctx context.Context, bookID string) error {
	return m.Called(ctx, bookID).Error(0)
}

func (m *mockDispatchSvc) ResetQuiz(ctx context.Context, quizID string) error {
	return m.Called(ctx, quizID).Error(0)
}

type mockNotifSvc struct{ mock.Mock }

func (m *mockNotifSvc) Record(ctx context.Context, req notification.RecordRequest) (*domain.Notification, error) {
	args := m.Called(ctx, req)
	n, _ := args.Get(0).(*domain.Notification)
	return n, args.Error(1)
}

func (m *mockNotifSvc) ListActive(ctx context.Context) ([]domain.Notification, error) {
	args := m.Called(ctx)
	ns, _ := args.Get(0).([]domain.Notification)
	return ns, args.Error(1)
}

func (m *mockNotifSvc) Deactivate(ctx context.Context, notificationIDs []string) (int, error) {
	args := m.Called(ctx, notificationIDs)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) Activate(ctx context.Context, notificationIDs []string) (int, error) {
	args := m.Called(ctx, notificationIDs)
	return args.Int(0), args.Error(1)
}

type mockBookGetter struct{ mock.Mock }

func (m *mockBookGetter) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	args := m.Called(ctx, bookID)
	b, _ := args.Get(0).(*domain.Book)
	return b, args.Error(1)
}

type mockQuizGetter struct{ mock.Mock }

func (m *mockQuizGetter) Get(ctx context.Context, quizID string) (*domain.Quiz, error) {
	args := m.Called(ctx, quizID)
	q, _ := args.Get(0).(*domain.Quiz)
	return q, args.Error(1)
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- single-entity dispatch ---

func TestDispatchBook_HappyPath(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("ForBook", mock.Anything, "book-1").Return("msg-42", nil)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := withChiID(httptest.NewRequest(http.MethodPost, "/v1/books/book-1/notify", nil), "book-1")
	rr := httptest.NewRecorder()
	h.Book(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp DispatchEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Sent)
	assert.Equal(t, "msg-42", resp.MessageID)
	svc.AssertExpectations(t)
}

func TestDispatchBook_UnknownBook(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("ForBook", mock.Anything, "missing").Return("", domain.ErrNotFound)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := withChiID(httptest.NewRequest(http.MethodPost, "/v1/books/missing/notify", nil), "missing")
	rr := httptest.NewRecorder()
	h.Book(rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDispatchBook_GatewayFailure(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("ForBook", mock.Anything, "book-1").Return("", errors.New("gateway unavailable"))
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := withChiID(httptest.NewRequest(http.MethodPost, "/v1/books/book-1/notify", nil), "book-1")
	rr := httptest.NewRecorder()
	h.Book(rr, r)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	var resp DispatchEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.Sent)
	assert.Contains(t, resp.Error, "gateway unavailable")
}

func TestDispatchQuiz_HappyPath(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("ForQuiz", mock.Anything, "quiz-7").Return("msg-50", nil)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := withChiID(httptest.NewRequest(http.MethodPost, "/v1/quizzes/quiz-7/notify", nil), "quiz-7")
	rr := httptest.NewRecorder()
	h.Quiz(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

// --- batch dispatch ---

func TestDispatchBookBatch_HappyPath(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("Books", mock.Anything, []string{"b-1", "b-2", "b-3"}).
		Return(dispatch.BatchResult{Sent: 1, AlreadySent: 1, Inactive: 1})
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string][]string{"ids": {"b-1", "b-2", "b-3"}})
	r := httptest.NewRequest(http.MethodPost, "/v1/books/notify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.BookBatch(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp dispatch.BatchResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, dispatch.BatchResult{Sent: 1, AlreadySent: 1, Inactive: 1}, resp)
	svc.AssertExpectations(t)
}

func TestDispatchBookBatch_InvalidBody(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchSvc{}, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := httptest.NewRequest(http.MethodPost, "/v1/books/notify", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.BookBatch(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDispatchBookBatch_EmptyIDs(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchSvc{}, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string][]string{"ids": {}})
	r := httptest.NewRequest(http.MethodPost, "/v1/books/notify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.BookBatch(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDispatchQuizBatch_HappyPath(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("Quizzes", mock.Anything, []string{"q-1"}).Return(dispatch.BatchResult{Sent: 1})
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string][]string{"ids": {"q-1"}})
	r := httptest.NewRequest(http.MethodPost, "/v1/quizzes/notify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.QuizBatch(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

// --- custom dispatch ---

func TestDispatchCustom_HappyPath(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("Custom", mock.Anything, mock.MatchedBy(func(req dispatch.CustomRequest) bool {
		return req.Title == "Njoftim" && req.Topic == ""
	})).Return("msg-60", nil)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string]interface{}{"title": "Njoftim", "body": "Versioni i ri është gati"})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp DispatchEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Sent)
	assert.Equal(t, "msg-60", resp.MessageID)
	svc.AssertExpectations(t)
}

func TestDispatchCustom_ValidationFailure(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchSvc{}, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string]interface{}{"title": "Njoftim"}) // missing body
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDispatchCustom_WithRecord(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("Custom", mock.Anything, mock.Anything).Return("msg-61", nil)
	records := &mockNotifSvc{}
	records.On("Record", mock.Anything, mock.MatchedBy(func(req notification.RecordRequest) bool {
		// Unspecified type defaults to announcement.
		return req.Type == domain.NotificationAnnouncement && req.Title == "Njoftim"
	})).Return(&domain.Notification{NotificationID: "n-1"}, nil)
	h := NewDispatchHandler(svc, records, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string]interface{}{"title": "Njoftim", "body": "B", "record": true})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	records.AssertExpectations(t)
}

func TestDispatchCustom_RecordFailureStillReportsSent(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("Custom", mock.Anything, mock.Anything).Return("msg-62", nil)
	records := &mockNotifSvc{}
	records.On("Record", mock.Anything, mock.Anything).Return(nil, errors.New("table throttled"))
	h := NewDispatchHandler(svc, records, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string]interface{}{"title": "T", "body": "B", "record": true})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp DispatchEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Sent)
	assert.Equal(t, "msg-62", resp.MessageID)
	assert.Contains(t, resp.Error, "record not appended")
}

func TestDispatchCustom_UnknownRecordType(t *testing.T) {
	svc := &mockDispatchSvc{}
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	body, _ := json.Marshal(map[string]interface{}{"title": "T", "body": "B", "record": true, "type": "promo"})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Custom", mock.Anything, mock.Anything)
}

func TestDispatchCustom_DanglingBookReference(t *testing.T) {
	svc := &mockDispatchSvc{}
	records := &mockNotifSvc{}
	books := &mockBookGetter{}
	books.On("Get", mock.Anything, "book-that-does-not-exist").Return(nil, domain.ErrNotFound)
	h := NewDispatchHandler(svc, records, books, &mockQuizGetter{})

	body, _ := json.Marshal(map[string]interface{}{
		"title": "T", "body": "B", "record": true, "type": "newBook",
		"book_id": "book-that-does-not-exist",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	// Rejected before anything is pushed or recorded.
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Custom", mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestDispatchCustom_DanglingQuizReference(t *testing.T) {
	svc := &mockDispatchSvc{}
	quizzes := &mockQuizGetter{}
	quizzes.On("Get", mock.Anything, "quiz-that-does-not-exist").Return(nil, domain.ErrNotFound)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, quizzes)

	body, _ := json.Marshal(map[string]interface{}{
		"title": "T", "body": "B", "quiz_id": "quiz-that-does-not-exist",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Custom", mock.Anything, mock.Anything)
}

func TestDispatchCustom_KnownBookReference(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("Custom", mock.Anything, mock.Anything).Return("msg-63", nil)
	records := &mockNotifSvc{}
	records.On("Record", mock.Anything, mock.MatchedBy(func(req notification.RecordRequest) bool {
		return req.BookID != nil && *req.BookID == "book-1"
	})).Return(&domain.Notification{NotificationID: "n-2"}, nil)
	books := &mockBookGetter{}
	books.On("Get", mock.Anything, "book-1").Return(&domain.Book{BookID: "book-1"}, nil)
	h := NewDispatchHandler(svc, records, books, &mockQuizGetter{})

	body, _ := json.Marshal(map[string]interface{}{
		"title": "T", "body": "B", "record": true, "type": "update", "book_id": "book-1",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Custom(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
	records.AssertExpectations(t)
}

// --- tracking reset ---

func TestResetBook_HappyPath(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("ResetBook", mock.Anything, "book-1").Return(nil)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := withChiID(httptest.NewRequest(http.MethodDelete, "/v1/books/book-1/notification", nil), "book-1")
	rr := httptest.NewRecorder()
	h.ResetBook(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestResetBook_UnknownBook(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("ResetBook", mock.Anything, "missing").Return(domain.ErrNotFound)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := withChiID(httptest.NewRequest(http.MethodDelete, "/v1/books/missing/notification", nil), "missing")
	rr := httptest.NewRecorder()
	h.ResetBook(rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestResetQuiz_HappyPath(t *testing.T) {
	svc := &mockDispatchSvc{}
	svc.On("ResetQuiz", mock.Anything, "quiz-7").Return(nil)
	h := NewDispatchHandler(svc, &mockNotifSvc{}, &mockBookGetter{}, &mockQuizGetter{})

	r := withChiID(httptest.NewRequest(http.MethodDelete, "/v1/quizzes/quiz-7/notification", nil), "quiz-7")
	rr := httptest.NewRecorder()
	h.ResetQuiz(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
