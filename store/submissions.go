package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mbolis/quick-forms/model"
)

// SubmitForm records one respondent's answers. A list answer becomes one row
// per element, a scalar exactly one row. Question ids are not checked against
// the form.
func SubmitForm(ctx context.Context, db *sql.DB, formId int64, responses map[int64]model.AnswerValue) (submissionId int64, err error) {
	questionIds := make([]int64, 0, len(responses))
	for id := range responses {
		questionIds = append(questionIds, id)
	}
	sort.Slice(questionIds, func(i, j int) bool { return questionIds[i] < questionIds[j] })

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM forms WHERE id = ?`, formId).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find form: %w", err)
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO form_submissions (form_id, submitted_at) VALUES (?, ?)
			RETURNING id`,
			formId,
			time.Now().UTC(),
		).Scan(&submissionId)
		if err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO submission_answers (submission_id, question_id, answer)
			VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("insert answers prepare: %w", err)
		}
		defer stmt.Close()

		for _, qId := range questionIds {
			for _, v := range responses[qId].Values {
				_, err = stmt.ExecContext(ctx, submissionId, qId, v)
				if err != nil {
					return fmt.Errorf("insert answer for question %d: %w", qId, err)
				}
			}
		}
		return nil
	})
	return
}

// ListSubmissions returns the submissions of a form owned by ownerId, newest
// first, with answers in insertion order.
func ListSubmissions(ctx context.Context, db *sql.DB, formId, ownerId int64) ([]model.Submission, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			x.id,
			s.id, s.submitted_at,
			a.question_id, a.answer
		FROM forms x
		LEFT OUTER JOIN form_submissions s ON (x.id = s.form_id)
		LEFT OUTER JOIN submission_answers a ON (s.id = a.submission_id)
		WHERE x.id = ?
			AND x.user_id = ?
		ORDER BY s.submitted_at DESC, s.id DESC, a.id`,
		formId,
		ownerId,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	found := false
	submissions := []model.Submission{}
	for rows.Next() {
		found = true

		var (
			formRef     int64
			sId         sql.NullInt64
			submittedAt sql.NullTime
			qId         sql.NullInt64
			answer      sql.NullString
		)
		err = rows.Scan(&formRef, &sId, &submittedAt, &qId, &answer)
		if err != nil {
			return nil, fmt.Errorf("list submissions scan: %w", err)
		}
		if !sId.Valid {
			continue
		}

		last := len(submissions) - 1
		if last < 0 || submissions[last].ID != sId.Int64 {
			submissions = append(submissions, model.Submission{
				ID:          sId.Int64,
				SubmittedAt: submittedAt.Time,
				Answers:     []model.Answer{},
			})
			last++
		}
		if qId.Valid {
			submissions[last].Answers = append(submissions[last].Answers, model.Answer{
				QuestionID: qId.Int64,
				Answer:     answer.String,
			})
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return submissions, nil
}
