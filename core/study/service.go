package study

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/listquery"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrTestNotFound     = errors.New("test not found")
	ErrQuestionNotFound = errors.New("question not found")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, c Category) (Category, error)
		QueryAllCategories(ctx context.Context) ([]Category, error)
		GetCategoryByID(ctx context.Context, id int) (Category, error)
		UpdateCategory(ctx context.Context, c Category) (Category, error)
		DeleteCategoriesByID(ctx context.Context, ids ...int) error

		CreateSection(ctx context.Context, s Section) (Section, error)
		QueryAllSections(ctx context.Context) ([]Section, error)
		GetSectionByID(ctx context.Context, id int) (Section, error)
		UpdateSection(ctx context.Context, s Section) (Section, error)
		DeleteSectionsByID(ctx context.Context, ids ...int) error

		CreateTest(ctx context.Context, t Test) (Test, error)
		QueryTestsBySection(ctx context.Context, sectionID int) ([]Test, error)
		GetTestByID(ctx context.Context, id int) (Test, error)
		UpdateTest(ctx context.Context, t Test) (Test, error)
		DeleteTestsByID(ctx context.Context, ids ...int) error

		CreateQuestion(ctx context.Context, q Question) (Question, error)
		QueryQuestionsByTest(ctx context.Context, testID int) ([]Question, error)
		GetQuestionByID(ctx context.Context, id int) (Question, error)
		UpdateQuestion(ctx context.Context, q Question) (Question, error)
		DeleteQuestionsByID(ctx context.Context, ids ...int) error

		CreateTestResult(ctx context.Context, r TestResult) (TestResult, error)
		QueryTestResultsByUser(ctx context.Context, userID int) ([]TestResult, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// CategoryFields wires Category into the list query pipeline.
func CategoryFields() listquery.Fields[Category] {
	return listquery.Fields[Category]{
		Search: []func(Category) string{func(c Category) string { return c.Name }},
		Text:   func(c Category) string { return c.Name },
		Time:   func(c Category) time.Time { return c.CreatedAt },
		ID:     func(c Category) int { return c.ID },
	}
}

// SectionFields wires Section into the list query pipeline.
func SectionFields() listquery.Fields[Section] {
	return listquery.Fields[Section]{
		Search: []func(Section) string{func(s Section) string { return s.Title }},
		Filter: map[string]func(Section) string{
			"level": func(s Section) string { return s.Level },
		},
		Text: func(s Section) string { return s.Title },
		Time: func(s Section) time.Time { return s.CreatedAt },
		ID:   func(s Section) int { return s.ID },
	}
}

// ResultFields wires TestResult into the list query pipeline; the "passed"
// filter backs the dashboard's passed/failed split.
func ResultFields() listquery.Fields[TestResult] {
	return listquery.Fields[TestResult]{
		Search: []func(TestResult) string{func(r TestResult) string { return r.TestTitle }},
		Filter: map[string]func(TestResult) string{
			"passed": func(r TestResult) string {
				if r.Passed {
					return "true"
				}
				return "false"
			},
		},
		Text: func(r TestResult) string { return r.TestTitle },
		Time: func(r TestResult) time.Time { return r.CreatedAt },
		ID:   func(r TestResult) int { return r.ID },
	}
}

// Categories

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	return svc.repo.CreateCategory(ctx, Category{
		Name:        nc.Name,
		Description: nc.Description,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) QueryCategories(ctx context.Context, params listquery.Params) (listquery.Result[Category], error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	if err != nil {
		return listquery.Result[Category]{}, err
	}
	return listquery.Apply(cats, params, CategoryFields()), nil
}

func (svc *Service) UpdateCategory(ctx context.Context, id int, nc NewCategory) (Category, error) {
	orig, err := svc.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	orig.Name = nc.Name
	orig.Description = nc.Description
	return svc.repo.UpdateCategory(ctx, orig)
}

func (svc *Service) DeleteCategories(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteCategoriesByID(ctx, ids...)
}

// Sections

// CountContent reports how many categories and sections exist.
func (svc *Service) CountContent(ctx context.Context) (categories, sections int, err error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	if err != nil {
		return 0, 0, err
	}
	secs, err := svc.repo.QueryAllSections(ctx)
	if err != nil {
		return 0, 0, err
	}
	return len(cats), len(secs), nil
}

func (svc *Service) CreateSection(ctx context.Context, ns NewSection) (Section, error) {
	if _, err := svc.repo.GetCategoryByID(ctx, ns.CategoryID); err != nil {
		return Section{}, err
	}
	return svc.repo.CreateSection(ctx, Section{
		CategoryID:  ns.CategoryID,
		Title:       ns.Title,
		Level:       ns.Level,
		Description: ns.Description,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) GetSection(ctx context.Context, id int) (Section, error) {
	return svc.repo.GetSectionByID(ctx, id)
}

// QuerySections lists sections, optionally restricted to one category, through
// the list pipeline.
func (svc *Service) QuerySections(ctx context.Context, categoryID int, params listquery.Params) (listquery.Result[Section], error) {
	sections, err := svc.repo.QueryAllSections(ctx)
	if err != nil {
		return listquery.Result[Section]{}, err
	}
	if categoryID != 0 {
		kept := sections[:0]
		for _, s := range sections {
			if s.CategoryID == categoryID {
				kept = append(kept, s)
			}
		}
		sections = kept
	}
	return listquery.Apply(sections, params, SectionFields()), nil
}

func (svc *Service) UpdateSection(ctx context.Context, id int, ns NewSection) (Section, error) {
	orig, err := svc.repo.GetSectionByID(ctx, id)
	if err != nil {
		return Section{}, err
	}
	orig.CategoryID = ns.CategoryID
	orig.Title = ns.Title
	orig.Level = ns.Level
	orig.Description = ns.Description
	return svc.repo.UpdateSection(ctx, orig)
}

func (svc *Service) DeleteSections(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteSectionsByID(ctx, ids...)
}

// Tests

func (svc *Service) CreateTest(ctx context.Context, nt NewTest) (Test, error) {
	if _, err := svc.repo.GetSectionByID(ctx, nt.SectionID); err != nil {
		return Test{}, err
	}
	return svc.repo.CreateTest(ctx, Test{
		SectionID: nt.SectionID,
		Title:     nt.Title,
		Level:     nt.Level,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryTestsBySection(ctx context.Context, sectionID int) ([]Test, error) {
	tests, err := svc.repo.QueryTestsBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []Test{}
	}
	return tests, nil
}

func (svc *Service) UpdateTest(ctx context.Context, id int, nt NewTest) (Test, error) {
	orig, err := svc.repo.GetTestByID(ctx, id)
	if err != nil {
		return Test{}, err
	}
	orig.SectionID = nt.SectionID
	orig.Title = nt.Title
	orig.Level = nt.Level
	return svc.repo.UpdateTest(ctx, orig)
}

func (svc *Service) DeleteTests(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteTestsByID(ctx, ids...)
}

// Questions

func (svc *Service) AddQuestion(ctx context.Context, testID int, nq NewQuestion) (Question, error) {
	if _, err := svc.repo.GetTestByID(ctx, testID); err != nil {
		return Question{}, err
	}
	q := Question{
		TestID:      testID,
		Text:        nq.Text,
		Description: nq.Description,
		CreatedAt:   time.Now().UTC(),
	}
	for _, no := range nq.Options {
		q.Options = append(q.Options, Option{Text: no.Text, IsCorrect: no.IsCorrect})
	}
	return svc.repo.CreateQuestion(ctx, q)
}

// QueryQuestions returns a test's questions with answer flags intact; admin only.
func (svc *Service) QueryQuestions(ctx context.Context, testID int) ([]Question, error) {
	return svc.repo.QueryQuestionsByTest(ctx, testID)
}

func (svc *Service) UpdateQuestion(ctx context.Context, id int, nq NewQuestion) (Question, error) {
	orig, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}
	orig.Text = nq.Text
	orig.Description = nq.Description
	orig.Options = nil
	for _, no := range nq.Options {
		orig.Options = append(orig.Options, Option{QuestionID: orig.ID, Text: no.Text, IsCorrect: no.IsCorrect})
	}
	return svc.repo.UpdateQuestion(ctx, orig)
}

func (svc *Service) DeleteQuestions(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteQuestionsByID(ctx, ids...)
}

// Test taking

// StartTest hands the questions to a student with correct-answer flags stripped.
func (svc *Service) StartTest(ctx context.Context, testID int) (Test, []Question, error) {
	test, err := svc.repo.GetTestByID(ctx, testID)
	if err != nil {
		return Test{}, nil, err
	}
	questions, err := svc.repo.QueryQuestionsByTest(ctx, testID)
	if err != nil {
		return Test{}, nil, err
	}
	sanitized := make([]Question, 0, len(questions))
	for _, q := range questions {
		sanitized = append(sanitized, q.Sanitized())
	}
	return test, sanitized, nil
}

// SubmitTest scores a submission against the stored correct options. Every
// question of the test counts toward the total, answered or not.
func (svc *Service) SubmitTest(ctx context.Context, userID, testID int, sub TestSubmission) (TestResult, error) {
	if err := sub.Validate(svc); err != nil {
		return TestResult{}, err
	}

	test, err := svc.repo.GetTestByID(ctx, testID)
	if err != nil {
		return TestResult{}, err
	}
	questions, err := svc.repo.QueryQuestionsByTest(ctx, testID)
	if err != nil {
		return TestResult{}, err
	}

	selected := make(map[int]int, len(sub.Answers))
	for _, a := range sub.Answers {
		selected[a.QuestionID] = a.OptionID
	}

	result := TestResult{
		UserID:         userID,
		TestID:         test.ID,
		TestTitle:      test.Title,
		TotalQuestions: len(questions),
		CreatedAt:      time.Now().UTC(),
	}
	for _, q := range questions {
		fb := QuestionFeedback{QuestionID: q.ID, Text: q.Text, Description: q.Description}
		for _, o := range q.Options {
			if o.IsCorrect {
				fb.Correct = o.Text
			}
			if o.ID == selected[q.ID] {
				fb.Selected = o.Text
				fb.WasCorrect = o.IsCorrect
			}
		}
		if fb.WasCorrect {
			result.CorrectAnswers++
		}
		result.Feedback = append(result.Feedback, fb)
	}
	result.RequiredCorrect = core.RequiredCorrect(result.TotalQuestions)
	result.Passed = core.Passed(result.CorrectAnswers, result.TotalQuestions)

	stored, err := svc.repo.CreateTestResult(ctx, result)
	if err != nil {
		return TestResult{}, errors.Wrap(err, "storing test result")
	}
	stored.Feedback = result.Feedback
	return stored, nil
}

// QueryResults runs the dashboard's result lists (all/passed/failed) through
// the list pipeline.
func (svc *Service) QueryResults(ctx context.Context, userID int, params listquery.Params) (listquery.Result[TestResult], error) {
	results, err := svc.repo.QueryTestResultsByUser(ctx, userID)
	if err != nil {
		return listquery.Result[TestResult]{}, err
	}
	return listquery.Apply(results, params, ResultFields()), nil
}
