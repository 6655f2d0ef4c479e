package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakportal/backend/core/vocab"
)

func wordMockColumns() []string {
	return []string{"id", "word", "translation", "word_class", "article", "forms", "meaning", "synonyms", "example", "level", "created_at", "updated_at"}
}

func TestVocabRepository_CreateWord(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVocabRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO word`).
		WithArgs("hund", "dog", "substantiv", sqlmock.AnyArg(), sqlmock.AnyArg(), "ett husdjur",
			sqlmock.AnyArg(), "Hunden skäller.", "A1", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	got, err := repo.CreateWord(context.Background(), vocab.Word{
		Word: "hund", Translation: "dog", WordClass: "substantiv",
		Forms: []string{"hunden", "hundar"}, Meaning: "ett husdjur",
		Example: "Hunden skäller.", Level: "A1", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVocabRepository_GetWordByText(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVocabRepository(db)
	now := time.Now().UTC()

	t.Run("case-insensitive match", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM word WHERE LOWER\(word\) = LOWER\(\$1\) AND LOWER\(word_class\) = LOWER\(\$2\)`).
			WithArgs("Hund", "Substantiv").
			WillReturnRows(sqlmock.NewRows(wordMockColumns()).
				AddRow(3, "hund", "dog", "substantiv", nil, "{hunden,hundar}", "ett husdjur", "{}", "Hunden skäller.", "A1", now, now))

		got, err := repo.GetWordByText(context.Background(), "Hund", "Substantiv")
		require.NoError(t, err)
		assert.Equal(t, 3, got.ID)
		assert.Equal(t, []string{"hunden", "hundar"}, got.Forms)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM word`).
			WithArgs("saknas", "verb").
			WillReturnRows(sqlmock.NewRows(wordMockColumns()))

		_, err := repo.GetWordByText(context.Background(), "saknas", "verb")
		assert.Equal(t, vocab.ErrNotFound, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVocabRepository_Favorites(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVocabRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO favorite_word`).
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.AddFavoriteWord(ctx, 7, 3))

	mock.ExpectQuery(`SELECT word_id FROM favorite_word WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"word_id"}).AddRow(3).AddRow(5))
	favs, err := repo.QueryFavoriteWordIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{3: true, 5: true}, favs)

	mock.ExpectExec(`DELETE FROM favorite_word`).
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RemoveFavoriteWord(ctx, 7, 3))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVocabRepository_QueryQuizResults(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVocabRepository(db)
	now := time.Now().UTC()

	cols := []string{"id", "user_id", "level", "correct_answers", "total_questions", "passed", "created_at"}
	mock.ExpectQuery(`SELECT (.+) FROM quiz_result`).
		WithArgs(7, "A1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 7, "A1", 8, 10, true, now).
			AddRow(2, 7, "A1", 5, 10, false, now))

	entries, err := repo.QueryQuizResults(context.Background(), 7, "A1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Passed)
	assert.Equal(t, 5, entries[1].CorrectAnswers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
