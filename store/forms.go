package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
)

// CreateForm stores the form and its whole question/option tree, or nothing.
func CreateForm(ctx context.Context, db *sql.DB, ownerId int64, in model.FormInput) (formId int64, err error) {
	in.Normalize()
	if err = in.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO forms (user_id, title, description, created_at) VALUES (?, ?, ?, ?)
			RETURNING id`,
			ownerId,
			in.Title,
			in.Description,
			time.Now().UTC(),
		).Scan(&formId)
		if err != nil {
			return fmt.Errorf("insert form: %w", err)
		}

		return insertQuestions(ctx, tx, formId, in.Questions, false)
	})
	return
}

// UpdateForm replaces title, description and the entire question set of a
// form owned by ownerId. Malformed question entries are skipped and returned;
// they never abort the replace.
func UpdateForm(ctx context.Context, db *sql.DB, formId, ownerId int64, in model.FormInput) (rejected []model.RejectedQuestion, err error) {
	in.Normalize()
	if err = in.ValidateHeader(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	accepted, rejected := model.PartitionQuestions(in.Questions)
	for _, r := range rejected {
		log.WithFields(log.Fields{"form_id": formId, "index": r.Index}).
			Warnf("update_form: skipping question: %s", r.Reason)
	}

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE forms
			SET
				title = ?,
				description = ?
			WHERE id = ?
				AND user_id = ?`,
			in.Title,
			in.Description,
			formId,
			ownerId,
		)
		if err != nil {
			return fmt.Errorf("update form: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update form: %w", err)
		}
		if n < 1 {
			return ErrNotFound
		}

		if err = deleteQuestions(ctx, tx, formId, ownerId); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, formId, accepted, true)
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// DeleteForm removes the form with its questions and options. Submissions go
// with it through the schema's cascades.
func DeleteForm(ctx context.Context, db *sql.DB, formId, ownerId int64) error {
	return inTx(ctx, db, func(tx *sql.Tx) error {
		if err := deleteQuestions(ctx, tx, formId, ownerId); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM forms
			WHERE id = ?
				AND user_id = ?`,
			formId,
			ownerId,
		)
		if err != nil {
			return fmt.Errorf("delete form: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete form: %w", err)
		}
		if n < 1 {
			return ErrNotFound
		}
		return nil
	})
}

// GetForm is the respondent read: any form by id.
func GetForm(ctx context.Context, db *sql.DB, formId int64) (*model.Form, error) {
	return loadForm(ctx, db, "", formId)
}

// GetOwnedForm is the authoring read, scoped by owner.
func GetOwnedForm(ctx context.Context, db *sql.DB, formId, ownerId int64) (*model.Form, error) {
	return loadForm(ctx, db, "AND f.user_id = ?", formId, ownerId)
}

func ListForms(ctx context.Context, db *sql.DB, ownerId int64) ([]model.FormSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT f.id, f.title, f.description, f.created_at, COUNT(s.id)
		FROM forms f
		LEFT OUTER JOIN form_submissions s ON (f.id = s.form_id)
		WHERE f.user_id = ?
		GROUP BY f.id
		ORDER BY f.created_at DESC, f.id DESC`,
		ownerId,
	)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	forms := []model.FormSummary{}
	for rows.Next() {
		f := model.FormSummary{}
		err = rows.Scan(&f.ID, &f.Title, &f.Description, &f.CreatedAt, &f.ResponseCount)
		if err != nil {
			return nil, fmt.Errorf("list forms scan: %w", err)
		}
		forms = append(forms, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

// loadForm reads the form and its tree in a single statement, so a concurrent
// replace is seen either entirely or not at all.
func loadForm(ctx context.Context, db *sql.DB, scope string, args ...any) (*model.Form, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			f.id, f.title, f.description, f.created_at,
			q.id, q.question_text, q.question_type, q.question_order,
			o.option_text
		FROM forms f
		LEFT OUTER JOIN questions q ON (f.id = q.form_id)
		LEFT OUTER JOIN options o ON (q.id = o.question_id AND q.question_type IN ('radio', 'checkbox'))
		WHERE f.id = ? `+scope+`
		ORDER BY q.question_order, q.id, o.option_order, o.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	defer rows.Close()

	var form *model.Form
	for rows.Next() {
		f := model.Form{}
		var (
			qId    sql.NullInt64
			qText  sql.NullString
			qType  sql.NullString
			qOrder sql.NullInt64
			opt    sql.NullString
		)
		err = rows.Scan(
			&f.ID, &f.Title, &f.Description, &f.CreatedAt,
			&qId, &qText, &qType, &qOrder,
			&opt,
		)
		if err != nil {
			return nil, fmt.Errorf("get form scan: %w", err)
		}

		if form == nil {
			f.Questions = []model.Question{}
			form = &f
		}
		if !qId.Valid {
			continue
		}

		last := len(form.Questions) - 1
		if last < 0 || form.Questions[last].ID != qId.Int64 {
			q := model.Question{
				ID:    qId.Int64,
				Text:  qText.String,
				Type:  qType.String,
				Order: int(qOrder.Int64),
			}
			if model.HasOptions(q.Type) {
				q.Options = []string{}
			}
			form.Questions = append(form.Questions, q)
			last++
		}
		if opt.Valid {
			form.Questions[last].Options = append(form.Questions[last].Options, opt.String)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}
	return form, nil
}

// deleteQuestions removes options then questions of a form, both scoped by
// the form's owner.
func deleteQuestions(ctx context.Context, tx *sql.Tx, formId, ownerId int64) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM options
		WHERE question_id IN (
			SELECT q.id
			FROM questions q
			INNER JOIN forms f ON (f.id = q.form_id)
			WHERE f.id = ?
				AND f.user_id = ?
		)`,
		formId,
		ownerId,
	)
	if err != nil {
		return fmt.Errorf("delete options: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM questions
		WHERE form_id IN (
			SELECT id FROM forms
			WHERE id = ?
				AND user_id = ?
		)`,
		formId,
		ownerId,
	)
	if err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}

// insertQuestions writes questions in input order. Without an explicit order a
// question takes its position in qs. With skipBlank, empty option strings are
// dropped and the remaining options renumbered.
func insertQuestions(ctx context.Context, tx *sql.Tx, formId int64, qs []model.QuestionInput, skipBlank bool) error {
	if len(qs) == 0 {
		return nil
	}

	qstmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (form_id, question_text, question_type, question_order)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return fmt.Errorf("insert questions prepare: %w", err)
	}
	defer qstmt.Close()

	ostmt, err := tx.PrepareContext(ctx, `
		INSERT INTO options (question_id, option_text, option_order)
		VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("insert options prepare: %w", err)
	}
	defer ostmt.Close()

	for i, q := range qs {
		order := i
		if q.Order != nil {
			order = *q.Order
		}

		var questionId int64
		err = qstmt.QueryRowContext(ctx, formId, q.Question, q.Type, order).Scan(&questionId)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}

		n := 0
		for _, opt := range q.Options {
			if skipBlank && opt == "" {
				continue
			}
			_, err = ostmt.ExecContext(ctx, questionId, opt, n)
			if err != nil {
				return fmt.Errorf("insert question %d option %d: %w", i, n, err)
			}
			n++
		}
	}
	return nil
}
