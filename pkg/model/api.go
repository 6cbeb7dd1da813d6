package model

import "time"

// Message is a generic {message} payload.
type Message struct {
	Message string `json:"message"`
}

// UserMessage implements Messager.
func (m Message) UserMessage() string { return m.Message }

// Course is a class taught by a teacher.
type Course struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Title     string `json:"title"`
	TeacherID string `json:"teacher_id,omitempty"`
	Students  int    `json:"students"`
}

// Assignment is coursework attached to a course.
type Assignment struct {
	ID       string    `json:"id"`
	CourseID string    `json:"course_id"`
	Title    string    `json:"title"`
	DueAt    time.Time `json:"due_at"`
}

// Announcement is a message posted to a school, class or course audience.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Audience  string    `json:"audience"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRecord is one student's presence for one course session.
type AttendanceRecord struct {
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	Date      time.Time `json:"date"`
	Present   bool      `json:"present"`
}

// Envelope wraps feature endpoint responses.
type Envelope[T any] struct {
	Status    string    `json:"status"` // "ok" or "error"
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      T         `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// APIError is the error body of a failed Envelope.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorCode classifies an APIError.
type ErrorCode string

const (
	ErrValidation   ErrorCode = "VALIDATION_ERROR"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrConflict     ErrorCode = "CONFLICT"
	ErrInternal     ErrorCode = "INTERNAL"
)
