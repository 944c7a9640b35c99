package domain

import "time"

// Course groups quizzes for one subject, e.g. "Cardiology".
type Course struct {
	ID          string
	Title       string
	Description string
	Category    string
	Position    int
	CreatedAt   time.Time
}

// Quiz is one quiz inside a course.
type Quiz struct {
	ID          string
	CourseID    string
	Title       string
	Description string
	Position    int
	CreatedAt   time.Time
}

// Question is a multiple-choice question. CorrectIndex points into Options.
type Question struct {
	ID           string
	QuizID       string
	Position     int
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  string
}
