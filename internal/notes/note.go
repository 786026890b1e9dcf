package notes

import (
	"errors"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	DefaultSummary  = "Newly uploaded study material."
	DefaultCategory = "other"
	DefaultStudent  = "Anonymous Student"
	DefaultTeacher  = "Teacher"
	DefaultReason   = "Quality standards not met"
)

var (
	ErrNotFound    = errors.New("note not found")
	ErrNotPending  = errors.New("note is not pending")
	ErrForbidden   = errors.New("not allowed to delete this note")
	ErrNoFile      = errors.New("no file uploaded")
	ErrInvalidType = errors.New("invalid file type: only PDF, DOC, DOCX and TXT files are allowed")
	ErrTooLarge    = errors.New("file too large")
)

type Note struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Type            string  `json:"type"`
	Size            string  `json:"size"`
	UploadDate      string  `json:"upload_date"`
	Summary         string  `json:"summary"`
	Category        string  `json:"category"`
	FileURL         string  `json:"file_url"`
	FileName        string  `json:"file_name"`
	Student         string  `json:"student"`
	OwnerID         string  `json:"owner_id,omitempty"`
	Status          string  `json:"status"`
	VerifiedBy      *string `json:"verified_by"`
	VerifiedAt      *int64  `json:"verified_at"`
	RejectionReason *string `json:"rejection_reason"`
	CreatedAt       int64   `json:"created_at"`
	UpdatedAt       int64   `json:"updated_at"`
}

type Stats struct {
	Pending       int `json:"pending"`
	ApprovedToday int `json:"approved_today"`
	RejectedToday int `json:"rejected_today"`
}

// StartOfDay is local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
