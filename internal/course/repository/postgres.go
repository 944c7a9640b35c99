package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"medquiz-platform/backend/internal/course/domain"
)

// PostgresRepository reads the course catalog tables.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a catalog repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListCourses returns all courses ordered by position.
func (r *PostgresRepository) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, category, position, created_at
		 FROM courses ORDER BY position, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Position, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ListQuizzesByCourse returns the course's quizzes ordered by position.
func (r *PostgresRepository) ListQuizzesByCourse(ctx context.Context, courseID string) ([]*domain.Quiz, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, course_id, title, description, position, created_at
		 FROM quizzes WHERE course_id = $1 ORDER BY position, title`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Quiz
	for rows.Next() {
		var q domain.Quiz
		if err := rows.Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.Position, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

// GetQuiz returns the quiz and its questions ordered by position, or
// (nil, nil, nil) if the quiz does not exist.
func (r *PostgresRepository) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, []*domain.Question, error) {
	var q domain.Quiz
	err := r.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, description, position, created_at
		 FROM quizzes WHERE id = $1`, quizID).
		Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.Position, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, quiz_id, position, prompt, options, correct_index, explanation
		 FROM questions WHERE quiz_id = $1 ORDER BY position`, quizID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var questions []*domain.Question
	for rows.Next() {
		var (
			question domain.Question
			options  []byte
		)
		if err := rows.Scan(&question.ID, &question.QuizID, &question.Position,
			&question.Prompt, &options, &question.CorrectIndex, &question.Explanation); err != nil {
			return nil, nil, err
		}
		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, nil, err
		}
		questions = append(questions, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return &q, questions, nil
}
