package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of project lifecycle states.
type Status string

const (
	StatusLive        Status = "live"
	StatusDevelopment Status = "development"
	StatusCompleted   Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusLive || s == StatusDevelopment || s == StatusCompleted
}

// Project is one portfolio entry.
type Project struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description" db:"description"`
	LongDescription string      `json:"long_description" db:"long_description"`
	Technologies    StringArray `json:"technologies" db:"technologies"`
	ProjectURL      string      `json:"project_url" db:"project_url"`
	DemoURL         string      `json:"demo_url" db:"demo_url"`
	Status          Status      `json:"status" db:"status"`
	Completion      int         `json:"completion" db:"completion"`
	Features        StringArray `json:"features" db:"features"`
	Challenges      StringArray `json:"challenges" db:"challenges"`
	Lessons         StringArray `json:"lessons" db:"lessons"`
	Images          StringArray `json:"images" db:"images"`
	Date            time.Time   `json:"date" db:"date"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// ClampCompletion forces a completion percentage into [0, 100].
func ClampCompletion(completion int) int {
	if completion < 0 {
		return 0
	}
	if completion > 100 {
		return 100
	}
	return completion
}

// StringArray type for PostgreSQL jsonb columns holding string lists
type StringArray []string

// Value implements driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}
