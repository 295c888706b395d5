package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/model"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()

	id, err := CreateUser(context.Background(), db, "user", email, []byte("hash"))
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func intPtr(i int) *int { return &i }

func sampleForm() model.FormInput {
	return model.FormInput{
		Title:       "T",
		Description: "D",
		Questions: []model.QuestionInput{
			{Question: "Name?", Type: model.TypeText},
			{Question: "Pick one", Type: model.TypeRadio, Options: []string{"A", "B"}},
		},
	}
}

// failOnOption makes any insert of an option with the given text abort,
// standing in for a storage failure in the middle of a transaction.
func failOnOption(t *testing.T, db *sql.DB, text string) {
	t.Helper()

	_, err := db.Exec(`
		CREATE TRIGGER fail_option BEFORE INSERT ON options
		WHEN NEW.option_text = '` + text + `'
		BEGIN
			SELECT RAISE(ABORT, 'simulated storage failure');
		END`)
	require.NoError(t, err)
}
