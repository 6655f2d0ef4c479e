package study_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/listquery"
	"github.com/sprakportal/backend/core/study"
	inmemdb "github.com/sprakportal/backend/storage/database/inmem"
)

func newTestService(t *testing.T) *study.Service {
	t.Helper()

	eng := en.New()
	trans, _ := ut.New(eng, eng).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, trans)

	return study.NewService(inmemdb.NewStudyRepository(inmemdb.NewDB()), validate)
}

// seedTest builds a category, section and test with 3 questions and returns
// the test plus the correct option ID per question.
func seedTest(t *testing.T, svc *study.Service) (study.Test, map[int]int) {
	t.Helper()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, study.NewCategory{Name: "Grammatik"})
	require.NoError(t, err)
	sec, err := svc.CreateSection(ctx, study.NewSection{CategoryID: cat.ID, Title: "Verb", Level: "A2"})
	require.NoError(t, err)
	test, err := svc.CreateTest(ctx, study.NewTest{SectionID: sec.ID, Title: "Presens", Level: "A2"})
	require.NoError(t, err)

	correct := make(map[int]int)
	for _, text := range []string{"Jag ___ hem", "Hon ___ kaffe", "Vi ___ svenska"} {
		q, err := svc.AddQuestion(ctx, test.ID, study.NewQuestion{
			Text: text,
			Options: []study.NewOption{
				{Text: "rätt", IsCorrect: true},
				{Text: "fel"},
				{Text: "också fel"},
			},
		})
		require.NoError(t, err)
		for _, o := range q.Options {
			if o.IsCorrect {
				correct[q.ID] = o.ID
			}
		}
	}
	return test, correct
}

func TestNewQuestion_Validate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// two correct options is rejected
	nq := study.NewQuestion{
		Text: "Trasig fråga",
		Options: []study.NewOption{
			{Text: "a", IsCorrect: true},
			{Text: "b", IsCorrect: true},
		},
	}
	err := nq.Validate(svc)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))

	// fewer than two options is rejected
	nq = study.NewQuestion{
		Text:    "Trasig fråga",
		Options: []study.NewOption{{Text: "a", IsCorrect: true}},
	}
	assert.Error(t, nq.Validate(svc))

	// unknown test is rejected
	_, err = svc.AddQuestion(ctx, 999, study.NewQuestion{
		Text: "Fråga",
		Options: []study.NewOption{
			{Text: "a", IsCorrect: true},
			{Text: "b"},
		},
	})
	assert.Equal(t, study.ErrTestNotFound, errors.Cause(err))
}

func TestService_StartTest_sanitizesQuestions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	test, _ := seedTest(t, svc)

	got, questions, err := svc.StartTest(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, test.ID, got.ID)
	require.Len(t, questions, 3)
	for _, q := range questions {
		for _, o := range q.Options {
			assert.False(t, o.IsCorrect, "correct flags must not leak to students")
		}
	}
}

func TestService_SubmitTest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	test, correct := seedTest(t, svc)
	userID := 7

	var answers []study.SelectedAnswer
	i := 0
	for qID, optID := range correct {
		if i < 2 {
			answers = append(answers, study.SelectedAnswer{QuestionID: qID, OptionID: optID})
		}
		i++
	}
	// third question left unanswered; it still counts toward the total

	res, err := svc.SubmitTest(ctx, userID, test.ID, study.TestSubmission{Answers: answers})
	require.NoError(t, err)

	assert.Equal(t, 2, res.CorrectAnswers)
	assert.Equal(t, 3, res.TotalQuestions)
	assert.Equal(t, 3, res.RequiredCorrect)
	assert.False(t, res.Passed)
	require.Len(t, res.Feedback, 3)

	var unanswered int
	for _, fb := range res.Feedback {
		assert.Equal(t, "rätt", fb.Correct)
		if fb.Selected == "" {
			unanswered++
			assert.False(t, fb.WasCorrect)
		}
	}
	assert.Equal(t, 1, unanswered)

	// the attempt lands in the dashboard's result list
	results, err := svc.QueryResults(ctx, userID, listquery.Params{})
	require.NoError(t, err)
	require.Len(t, results.PageItems, 1)
	assert.Equal(t, "Presens", results.PageItems[0].TestTitle)

	// passed filter
	results, err = svc.QueryResults(ctx, userID, listquery.Params{
		Filters: map[string]string{"passed": "true"},
	})
	require.NoError(t, err)
	assert.Empty(t, results.PageItems)
}

func TestService_SubmitTest_allCorrectPasses(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	test, correct := seedTest(t, svc)

	var answers []study.SelectedAnswer
	for qID, optID := range correct {
		answers = append(answers, study.SelectedAnswer{QuestionID: qID, OptionID: optID})
	}

	res, err := svc.SubmitTest(ctx, 7, test.ID, study.TestSubmission{Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, 3, res.CorrectAnswers)
	assert.True(t, res.Passed)
}

func TestService_SectionParentChecks(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateSection(ctx, study.NewSection{CategoryID: 42, Title: "Verb", Level: "A2"})
	assert.Equal(t, study.ErrCategoryNotFound, errors.Cause(err))

	_, err = svc.CreateTest(ctx, study.NewTest{SectionID: 42, Title: "Presens", Level: "A2"})
	assert.Equal(t, study.ErrSectionNotFound, errors.Cause(err))
}
