package http

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/jsonfile"
)

// APIHandler serves the REST surface for students and teachers.
type APIHandler struct {
	quiz         *app.QuizService
	teacher      *app.TeacherService
	historyLimit int
}

func NewAPIHandler(quiz *app.QuizService, teacher *app.TeacherService, historyLimit int) *APIHandler {
	return &APIHandler{quiz: quiz, teacher: teacher, historyLimit: historyLimit}
}

// Register mounts the API routes under /api.
func (h *APIHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", h.startSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.currentQuestion).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.endSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/answers", h.submitAnswer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/summary", h.summary).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/score", h.retryScore).Methods(http.MethodPost)

	api.HandleFunc("/questions", h.addQuestion).Methods(http.MethodPost)
	api.HandleFunc("/questions/import", h.importQuestions).Methods(http.MethodPost)
	api.HandleFunc("/scores", h.scoreHistory).Methods(http.MethodGet)
}

type startRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type sessionResponse struct {
	Question *app.QuestionView `json:"question,omitempty"`
	Session  app.Snapshot      `json:"session"`
}

type importResponse struct {
	Imported  int               `json:"imported"`
	Questions []domain.Question `json:"questions"`
}

func (h *APIHandler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.quiz.StartQuiz(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *APIHandler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	q, snap, err := h.quiz.CurrentQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Question: q, Session: snap})
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	outcome, err := h.quiz.SubmitAnswer(r.Context(), mux.Vars(r)["id"], req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *APIHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.quiz.Summary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) retryScore(w http.ResponseWriter, r *http.Request) {
	summary, err := h.quiz.RetryScore(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) endSession(w http.ResponseWriter, r *http.Request) {
	h.quiz.EndSession(r.Context(), mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) addQuestion(w http.ResponseWriter, r *http.Request) {
	var req app.NewQuestion
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := h.teacher.AddQuestion(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// importQuestions stores the question file sent as the body, or the configured
// question file when the body is empty.
func (h *APIHandler) importQuestions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	var saved []domain.Question
	if len(bytes.TrimSpace(body)) == 0 {
		saved, err = h.teacher.ImportFile(r.Context())
	} else {
		var parsed []domain.Question
		parsed, err = jsonfile.Parse(body)
		if err != nil {
			err = &domain.ParseError{Source: "request body", Err: err}
		} else {
			saved, err = h.teacher.ImportQuestions(r.Context(), parsed)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if saved == nil {
		saved = []domain.Question{}
	}
	writeJSON(w, http.StatusCreated, importResponse{Imported: len(saved), Questions: saved})
}

func (h *APIHandler) scoreHistory(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, &domain.ValidationError{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}
	entries, err := h.teacher.ScoreHistory(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
