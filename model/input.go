package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mbolis/quick-forms/validation"
)

type FormInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions" validate:"dive"`
}

type QuestionInput struct {
	Question string   `json:"question" validate:"required"`
	Type     string   `json:"type" validate:"required,oneof=text textarea radio checkbox"`
	Options  []string `json:"options,omitempty"`
	Order    *int     `json:"order,omitempty" validate:"omitempty,gte=0"`
}

type RejectedQuestion struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Normalize trims the title; a blank title becomes empty and fails validation.
func (f *FormInput) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
}

// Validate checks the whole tree, as required on create.
func (f FormInput) Validate() error {
	return validation.ValidateStruct(f)
}

// ValidateHeader checks only what a replace can not tolerate: a title and a
// question list, possibly empty.
func (f FormInput) ValidateHeader() error {
	if err := validation.Validator().Var(f.Title, "required"); err != nil {
		return &validation.RequestValidationError{Fields: []validation.FieldError{
			{Field: "title", Tag: "required", Message: "title is required"},
		}}
	}
	if f.Questions == nil {
		return &validation.RequestValidationError{Fields: []validation.FieldError{
			{Field: "questions", Tag: "required", Message: "questions must be a list"},
		}}
	}
	return nil
}

// PartitionQuestions splits qs into entries that can be stored and entries
// that are skipped, keeping input order in both.
func PartitionQuestions(qs []QuestionInput) (accepted []QuestionInput, rejected []RejectedQuestion) {
	for i, q := range qs {
		if err := validation.ValidateStruct(q); err != nil {
			rejected = append(rejected, RejectedQuestion{Index: i, Reason: err.Error()})
			continue
		}
		accepted = append(accepted, q)
	}
	return
}

type SubmissionInput struct {
	Responses map[string]AnswerValue `json:"responses"`
}

// AnswerValue is either a single string or, for checkbox questions, a list.
type AnswerValue struct {
	Values []string
	Multi  bool
}

func Scalar(v string) AnswerValue {
	return AnswerValue{Values: []string{v}}
}

func Multi(vs ...string) AnswerValue {
	if vs == nil {
		vs = []string{}
	}
	return AnswerValue{Values: vs, Multi: true}
}

var errAnswerShape = errors.New("answer must be a string or a list of strings")

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errAnswerShape
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Scalar(s)
		return nil
	case '[':
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return errAnswerShape
		}
		*a = Multi(vs...)
		return nil
	default:
		return errAnswerShape
	}
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Values)
	}
	if len(a.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.Values[0])
}
