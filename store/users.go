package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/quick-forms/model"
)

func CreateUser(ctx context.Context, db *sql.DB, name, email string, passwordHash []byte) (userId int64, err error) {
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email = ?`, email).Scan(&exists)
		switch {
		case err == nil:
			return ErrEmailTaken
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("find user: %w", err)
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)
			RETURNING id`,
			name,
			email,
			passwordHash,
		).Scan(&userId)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	return
}

func FindUserByEmail(ctx context.Context, db *sql.DB, email string) (u model.User, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash
		FROM users
		WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
