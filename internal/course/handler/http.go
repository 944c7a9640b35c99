// Package handler exposes the read-only course catalog over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medquiz-platform/backend/internal/course/repository"
	"medquiz-platform/backend/internal/server/httpx"
)

// Handler serves the catalog API.
type Handler struct {
	repo repository.Repository
}

// NewHandler returns a catalog handler backed by repo.
func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes mounts the catalog endpoints. All routes require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/courses", h.listCourses)
	r.Get("/courses/{courseID}/quizzes", h.listQuizzes)
	r.Get("/quizzes/{quizID}", h.getQuiz)
}

type courseResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type quizSummaryResponse struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// questionResponse deliberately omits the correct answer and explanation;
// the client gets those from the grading flow, not the catalog.
type questionResponse struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type quizDetailResponse struct {
	quizSummaryResponse
	Questions []questionResponse `json:"questions"`
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.repo.ListCourses(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "could not load courses")
		return
	}
	out := struct {
		Courses []courseResponse `json:"courses"`
	}{Courses: make([]courseResponse, 0, len(courses))}
	for _, c := range courses {
		out.Courses = append(out.Courses, courseResponse{
			ID: c.ID, Title: c.Title, Description: c.Description, Category: c.Category,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	quizzes, err := h.repo.ListQuizzesByCourse(r.Context(), courseID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "could not load quizzes")
		return
	}
	out := struct {
		Quizzes []quizSummaryResponse `json:"quizzes"`
	}{Quizzes: make([]quizSummaryResponse, 0, len(quizzes))}
	for _, q := range quizzes {
		out.Quizzes = append(out.Quizzes, quizSummaryResponse{
			ID: q.ID, CourseID: q.CourseID, Title: q.Title, Description: q.Description,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	quiz, questions, err := h.repo.GetQuiz(r.Context(), quizID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "could not load quiz")
		return
	}
	if quiz == nil {
		httpx.Error(w, http.StatusNotFound, "not_found", "quiz not found")
		return
	}
	resp := quizDetailResponse{
		quizSummaryResponse: quizSummaryResponse{
			ID: quiz.ID, CourseID: quiz.CourseID, Title: quiz.Title, Description: quiz.Description,
		},
		Questions: make([]questionResponse, 0, len(questions)),
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, questionResponse{
			ID: q.ID, Prompt: q.Prompt, Options: q.Options,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}
