package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/libraria-api/internal/application/quiz"
	"github.com/libraria-api/internal/pkg/validate"
)

// QuizHandler handles administrative quiz and question entry.
type QuizHandler struct {
	svc quiz.Service
}

func NewQuizHandler(svc quiz.Service) *QuizHandler {
	return &QuizHandler{svc: svc}
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quiz.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuizHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req quiz.AddQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := h.svc.AddQuestion(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *QuizHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.svc.Questions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}
