package repository

import (
	"context"

	"medquiz-platform/backend/internal/course/domain"
)

// Repository defines read access to the course catalog. GetQuiz returns
// (nil, nil, nil) when the quiz does not exist.
type Repository interface {
	ListCourses(ctx context.Context) ([]*domain.Course, error)
	ListQuizzesByCourse(ctx context.Context, courseID string) ([]*domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, []*domain.Question, error)
}
