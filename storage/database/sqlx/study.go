package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/sprakportal/backend/core/study"
)

type studyRepository struct {
	db *sqlx.DB
}

func NewStudyRepository(db *sqlx.DB) study.Repository {
	return &studyRepository{db: db}
}

// Categories

func (repo *studyRepository) CreateCategory(ctx context.Context, c study.Category) (study.Category, error) {
	query := `INSERT INTO category (name, description, created_at) VALUES ($1, $2, $3) RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, c.Name, c.Description, c.CreatedAt).Scan(&c.ID)
	return c, err
}

func (repo *studyRepository) QueryAllCategories(ctx context.Context) ([]study.Category, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM category ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []study.Category
	for rows.Next() {
		var c study.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (repo *studyRepository) GetCategoryByID(ctx context.Context, id int) (study.Category, error) {
	var c study.Category
	err := repo.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM category WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return study.Category{}, study.ErrCategoryNotFound
	}
	return c, err
}

func (repo *studyRepository) UpdateCategory(ctx context.Context, c study.Category) (study.Category, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE category SET name = $1, description = $2 WHERE id = $3`, c.Name, c.Description, c.ID)
	if err != nil {
		return study.Category{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.Category{}, study.ErrCategoryNotFound
	}
	return c, nil
}

func (repo *studyRepository) DeleteCategoriesByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM category WHERE id = ANY($1)`, intArray(ids))
	return err
}

// Sections

func (repo *studyRepository) CreateSection(ctx context.Context, s study.Section) (study.Section, error) {
	query := `INSERT INTO section (category_id, title, level, description, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, s.CategoryID, s.Title, s.Level, s.Description, s.CreatedAt).Scan(&s.ID)
	return s, err
}

func (repo *studyRepository) QueryAllSections(ctx context.Context) ([]study.Section, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, category_id, title, level, description, created_at FROM section ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var secs []study.Section
	for rows.Next() {
		var s study.Section
		if err = rows.Scan(&s.ID, &s.CategoryID, &s.Title, &s.Level, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		secs = append(secs, s)
	}
	return secs, rows.Err()
}

func (repo *studyRepository) GetSectionByID(ctx context.Context, id int) (study.Section, error) {
	var s study.Section
	err := repo.db.QueryRowContext(ctx, `SELECT id, category_id, title, level, description, created_at FROM section WHERE id = $1`, id).
		Scan(&s.ID, &s.CategoryID, &s.Title, &s.Level, &s.Description, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return study.Section{}, study.ErrSectionNotFound
	}
	return s, err
}

func (repo *studyRepository) UpdateSection(ctx context.Context, s study.Section) (study.Section, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE section SET category_id = $1, title = $2, level = $3, description = $4 WHERE id = $5`,
		s.CategoryID, s.Title, s.Level, s.Description, s.ID)
	if err != nil {
		return study.Section{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.Section{}, study.ErrSectionNotFound
	}
	return s, nil
}

func (repo *studyRepository) DeleteSectionsByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM section WHERE id = ANY($1)`, intArray(ids))
	return err
}

// Tests

func (repo *studyRepository) CreateTest(ctx context.Context, t study.Test) (study.Test, error) {
	query := `INSERT INTO test (section_id, title, level, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, t.SectionID, t.Title, t.Level, t.CreatedAt).Scan(&t.ID)
	return t, err
}

func (repo *studyRepository) QueryTestsBySection(ctx context.Context, sectionID int) ([]study.Test, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, section_id, title, level, created_at FROM test WHERE section_id = $1 ORDER BY id`, sectionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tests []study.Test
	for rows.Next() {
		var t study.Test
		if err = rows.Scan(&t.ID, &t.SectionID, &t.Title, &t.Level, &t.CreatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

func (repo *studyRepository) GetTestByID(ctx context.Context, id int) (study.Test, error) {
	var t study.Test
	err := repo.db.QueryRowContext(ctx, `SELECT id, section_id, title, level, created_at FROM test WHERE id = $1`, id).
		Scan(&t.ID, &t.SectionID, &t.Title, &t.Level, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return study.Test{}, study.ErrTestNotFound
	}
	return t, err
}

func (repo *studyRepository) UpdateTest(ctx context.Context, t study.Test) (study.Test, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE test SET section_id = $1, title = $2, level = $3 WHERE id = $4`,
		t.SectionID, t.Title, t.Level, t.ID)
	if err != nil {
		return study.Test{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.Test{}, study.ErrTestNotFound
	}
	return t, nil
}

func (repo *studyRepository) DeleteTestsByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM test WHERE id = ANY($1)`, intArray(ids))
	return err
}

// Questions

func (repo *studyRepository) CreateQuestion(ctx context.Context, q study.Question) (study.Question, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return study.Question{}, err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO question (test_id, text, description, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err = tx.QueryRowContext(ctx, query, q.TestID, q.Text, q.Description, q.CreatedAt).Scan(&q.ID); err != nil {
		return study.Question{}, err
	}
	for i := range q.Options {
		q.Options[i].QuestionID = q.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO option (question_id, text, is_correct) VALUES ($1, $2, $3) RETURNING id`,
			q.ID, q.Options[i].Text, q.Options[i].IsCorrect,
		).Scan(&q.Options[i].ID)
		if err != nil {
			return study.Question{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return study.Question{}, err
	}
	return q, nil
}

func (repo *studyRepository) queryQuestions(ctx context.Context, where string, arg interface{}) ([]study.Question, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, test_id, text, description, created_at FROM question WHERE `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var questions []study.Question
	byID := make(map[int]int) // question ID -> index
	var ids []int
	for rows.Next() {
		var q study.Question
		if err = rows.Scan(&q.ID, &q.TestID, &q.Text, &q.Description, &q.CreatedAt); err != nil {
			return nil, err
		}
		byID[q.ID] = len(questions)
		ids = append(ids, q.ID)
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	optRows, err := repo.db.QueryContext(ctx,
		`SELECT id, question_id, text, is_correct FROM option WHERE question_id = ANY($1) ORDER BY id`, intArray(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = optRows.Close() }()

	for optRows.Next() {
		var o study.Option
		if err = optRows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		idx := byID[o.QuestionID]
		questions[idx].Options = append(questions[idx].Options, o)
	}
	return questions, optRows.Err()
}

func (repo *studyRepository) QueryQuestionsByTest(ctx context.Context, testID int) ([]study.Question, error) {
	return repo.queryQuestions(ctx, "test_id = $1", testID)
}

func (repo *studyRepository) GetQuestionByID(ctx context.Context, id int) (study.Question, error) {
	questions, err := repo.queryQuestions(ctx, "id = $1", id)
	if err != nil {
		return study.Question{}, err
	}
	if len(questions) == 0 {
		return study.Question{}, study.ErrQuestionNotFound
	}
	return questions[0], nil
}

// UpdateQuestion replaces the question's options wholesale.
func (repo *studyRepository) UpdateQuestion(ctx context.Context, q study.Question) (study.Question, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return study.Question{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE question SET text = $1, description = $2 WHERE id = $3`, q.Text, q.Description, q.ID)
	if err != nil {
		return study.Question{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.Question{}, study.ErrQuestionNotFound
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM option WHERE question_id = $1`, q.ID); err != nil {
		return study.Question{}, err
	}
	for i := range q.Options {
		q.Options[i].QuestionID = q.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO option (question_id, text, is_correct) VALUES ($1, $2, $3) RETURNING id`,
			q.ID, q.Options[i].Text, q.Options[i].IsCorrect,
		).Scan(&q.Options[i].ID)
		if err != nil {
			return study.Question{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return study.Question{}, err
	}
	return q, nil
}

func (repo *studyRepository) DeleteQuestionsByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM question WHERE id = ANY($1)`, intArray(ids))
	return err
}

// Results

func (repo *studyRepository) CreateTestResult(ctx context.Context, r study.TestResult) (study.TestResult, error) {
	query := `
		INSERT INTO test_result (user_id, test_id, test_title, correct_answers, total_questions, required_correct, passed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		r.UserID, r.TestID, r.TestTitle, r.CorrectAnswers, r.TotalQuestions, r.RequiredCorrect, r.Passed, r.CreatedAt,
	).Scan(&r.ID)
	return r, err
}

func (repo *studyRepository) QueryTestResultsByUser(ctx context.Context, userID int) ([]study.TestResult, error) {
	query := `
		SELECT id, user_id, test_id, test_title, correct_answers, total_questions, required_correct, passed, created_at
		FROM test_result
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []study.TestResult
	for rows.Next() {
		var r study.TestResult
		if err = rows.Scan(&r.ID, &r.UserID, &r.TestID, &r.TestTitle, &r.CorrectAnswers,
			&r.TotalQuestions, &r.RequiredCorrect, &r.Passed, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
