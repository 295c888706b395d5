package model

import (
	"encoding/json"
	"time"
)

const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeRadio    = "radio"
	TypeCheckbox = "checkbox"
)

// HasOptions reports whether questions of type t carry an option list.
func HasOptions(t string) bool {
	return t == TypeRadio || t == TypeCheckbox
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
}

type Form struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"question_text"`
	Type    string   `json:"question_type"`
	Order   int      `json:"question_order"`
	Options []string `json:"options,omitempty"`
}

type questionFields Question

// MarshalJSON always writes an options list for choice questions, empty
// included, and never writes one for free-text questions.
func (q Question) MarshalJSON() ([]byte, error) {
	if !HasOptions(q.Type) {
		q.Options = nil
		return json.Marshal(questionFields(q))
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	return json.Marshal(struct {
		questionFields
		Options []string `json:"options"`
	}{questionFields(q), q.Options})
}

type FormSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	ResponseCount int       `json:"responseCount"`
}

type Submission struct {
	ID          int64     `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Answers     []Answer  `json:"answers"`
}

type Answer struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}
