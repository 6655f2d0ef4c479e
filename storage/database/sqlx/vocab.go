package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/sprakportal/backend/core/vocab"
)

type wordRow struct {
	ID          int            `db:"id"`
	Word        string         `db:"word"`
	Translation string         `db:"translation"`
	WordClass   string         `db:"word_class"`
	Article     null.String    `db:"article"`
	Forms       pq.StringArray `db:"forms"`
	Meaning     string         `db:"meaning"`
	Synonyms    pq.StringArray `db:"synonyms"`
	Example     string         `db:"example"`
	Level       string         `db:"level"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r wordRow) toDomain() vocab.Word {
	return vocab.Word{
		ID:          r.ID,
		Word:        r.Word,
		Translation: r.Translation,
		WordClass:   r.WordClass,
		Article:     r.Article,
		Forms:       r.Forms,
		Meaning:     r.Meaning,
		Synonyms:    r.Synonyms,
		Example:     r.Example,
		Level:       r.Level,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const wordColumns = `id, word, translation, word_class, article, forms, meaning, synonyms, example, level, created_at, updated_at`

type vocabRepository struct {
	db *sqlx.DB
}

func NewVocabRepository(db *sqlx.DB) vocab.Repository {
	return &vocabRepository{db: db}
}

func (repo *vocabRepository) CreateWord(ctx context.Context, w vocab.Word) (vocab.Word, error) {
	query := `
		INSERT INTO word (word, translation, word_class, article, forms, meaning, synonyms, example, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		w.Word, w.Translation, w.WordClass, w.Article, pq.StringArray(w.Forms),
		w.Meaning, pq.StringArray(w.Synonyms), w.Example, w.Level, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	return w, err
}

func (repo *vocabRepository) QueryAllWords(ctx context.Context) ([]vocab.Word, error) {
	var rows []wordRow
	query := fmt.Sprintf(`SELECT %s FROM word ORDER BY id`, wordColumns)
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	words := make([]vocab.Word, 0, len(rows))
	for _, r := range rows {
		words = append(words, r.toDomain())
	}
	return words, nil
}

func (repo *vocabRepository) GetWordByID(ctx context.Context, id int) (vocab.Word, error) {
	var r wordRow
	query := fmt.Sprintf(`SELECT %s FROM word WHERE id = $1`, wordColumns)
	if err := repo.db.GetContext(ctx, &r, query, id); err != nil {
		if err == sql.ErrNoRows {
			return vocab.Word{}, vocab.ErrNotFound
		}
		return vocab.Word{}, err
	}
	return r.toDomain(), nil
}

func (repo *vocabRepository) GetWordByText(ctx context.Context, word, wordClass string) (vocab.Word, error) {
	var r wordRow
	query := fmt.Sprintf(`SELECT %s FROM word WHERE LOWER(word) = LOWER($1) AND LOWER(word_class) = LOWER($2) LIMIT 1`, wordColumns)
	if err := repo.db.GetContext(ctx, &r, query, word, wordClass); err != nil {
		if err == sql.ErrNoRows {
			return vocab.Word{}, vocab.ErrNotFound
		}
		return vocab.Word{}, err
	}
	return r.toDomain(), nil
}

func (repo *vocabRepository) UpdateWord(ctx context.Context, w vocab.Word) (vocab.Word, error) {
	query := `
		UPDATE word
		SET word = $1, translation = $2, word_class = $3, article = $4, forms = $5,
		    meaning = $6, synonyms = $7, example = $8, level = $9, updated_at = $10
		WHERE id = $11
		RETURNING created_at`
	err := repo.db.QueryRowContext(ctx, query,
		w.Word, w.Translation, w.WordClass, w.Article, pq.StringArray(w.Forms),
		w.Meaning, pq.StringArray(w.Synonyms), w.Example, w.Level, w.UpdatedAt, w.ID,
	).Scan(&w.CreatedAt)
	if err == sql.ErrNoRows {
		return vocab.Word{}, vocab.ErrNotFound
	}
	return w, err
}

func (repo *vocabRepository) DeleteWordsByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM word WHERE id = ANY($1)`, intArray(ids))
	return err
}

func (repo *vocabRepository) AddFavoriteWord(ctx context.Context, userID, wordID int) error {
	query := `INSERT INTO favorite_word (user_id, word_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := repo.db.ExecContext(ctx, query, userID, wordID)
	return err
}

func (repo *vocabRepository) RemoveFavoriteWord(ctx context.Context, userID, wordID int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM favorite_word WHERE user_id = $1 AND word_id = $2`, userID, wordID)
	return err
}

func (repo *vocabRepository) QueryFavoriteWordIDs(ctx context.Context, userID int) (map[int]bool, error) {
	var ids []int
	if err := repo.db.SelectContext(ctx, &ids, `SELECT word_id FROM favorite_word WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	favs := make(map[int]bool, len(ids))
	for _, id := range ids {
		favs[id] = true
	}
	return favs, nil
}

func (repo *vocabRepository) CreateQuizResult(ctx context.Context, entry vocab.QuizHistoryEntry) (vocab.QuizHistoryEntry, error) {
	query := `
		INSERT INTO quiz_result (user_id, level, correct_answers, total_questions, passed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		entry.UserID, entry.Level, entry.CorrectAnswers, entry.TotalQuestions, entry.Passed, entry.CreatedAt,
	).Scan(&entry.ID)
	return entry, err
}

func (repo *vocabRepository) QueryQuizResults(ctx context.Context, userID int, level string) ([]vocab.QuizHistoryEntry, error) {
	query := `
		SELECT id, user_id, level, correct_answers, total_questions, passed, created_at
		FROM quiz_result
		WHERE user_id = $1 AND ($2 = '' OR level = $2)
		ORDER BY created_at`
	rows, err := repo.db.QueryContext(ctx, query, userID, level)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []vocab.QuizHistoryEntry
	for rows.Next() {
		var e vocab.QuizHistoryEntry
		if err = rows.Scan(&e.ID, &e.UserID, &e.Level, &e.CorrectAnswers, &e.TotalQuestions, &e.Passed, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func intArray(ids []int) pq.Int64Array {
	arr := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, int64(id))
	}
	return arr
}
