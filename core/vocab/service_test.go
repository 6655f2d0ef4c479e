package vocab_test

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
	"github.com/sprakportal/backend/core/vocab"
	inmemdb "github.com/sprakportal/backend/storage/database/inmem"
)

func newTestService(t *testing.T) *vocab.Service {
	t.Helper()

	eng := en.New()
	trans, _ := ut.New(eng, eng).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, trans)

	return vocab.NewService(inmemdb.NewVocabRepository(inmemdb.NewDB()), validate)
}

func mustCreate(t *testing.T, svc *vocab.Service, nw vocab.NewWord) vocab.Word {
	t.Helper()
	w, err := svc.Create(context.Background(), nw, false)
	require.NoError(t, err)
	return w
}

func TestService_Create_duplicateConflict(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	orig := mustCreate(t, svc, vocab.NewWord{
		Word: "hund", Translation: "dog", WordClass: "substantiv", Level: "A1",
	})

	// same word in a different class is not a duplicate
	_, err := svc.Create(ctx, vocab.NewWord{
		Word: "hund", Translation: "to hound", WordClass: "verb", Level: "B1",
	}, false)
	require.NoError(t, err)

	// same word and class conflicts and carries the existing record
	_, err = svc.Create(ctx, vocab.NewWord{
		Word: "Hund", Translation: "hound", WordClass: "substantiv", Level: "A2",
	}, false)
	require.Error(t, err)
	var confErr *core.ConflictError
	require.True(t, errors.As(err, &confErr))
	existing, ok := confErr.Existing.(vocab.Word)
	require.True(t, ok)
	assert.Equal(t, orig.ID, existing.ID)

	// force bypasses the duplicate check
	forced, err := svc.Create(ctx, vocab.NewWord{
		Word: "Hund", Translation: "hound", WordClass: "substantiv", Level: "A2",
	}, true)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, forced.ID)
}

func TestService_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	userID := 7

	w := mustCreate(t, svc, vocab.NewWord{
		Word: "katt", Translation: "cat", WordClass: "substantiv", Level: "A1",
	})

	// not favorited yet: toggle adds
	fav, err := svc.ToggleFavorite(ctx, userID, w.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	got, err := svc.GetByID(ctx, w.ID, userID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	// favorited: toggle removes
	fav, err = svc.ToggleFavorite(ctx, userID, w.ID)
	require.NoError(t, err)
	assert.False(t, fav)

	got, err = svc.GetByID(ctx, w.ID, userID)
	require.NoError(t, err)
	assert.False(t, got.IsFavorite)

	// another user's favorites are unaffected
	_, err = svc.ToggleFavorite(ctx, userID, w.ID)
	require.NoError(t, err)
	other, err := svc.GetByID(ctx, w.ID, 99)
	require.NoError(t, err)
	assert.False(t, other.IsFavorite)

	// unknown word cannot be favorited
	_, err = svc.ToggleFavorite(ctx, userID, 12345)
	assert.Equal(t, vocab.ErrNotFound, errors.Cause(err))
}

func TestService_QueryFavorites(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	userID := 7

	w1 := mustCreate(t, svc, vocab.NewWord{Word: "hund", Translation: "dog", WordClass: "substantiv", Level: "A1"})
	w2 := mustCreate(t, svc, vocab.NewWord{Word: "katt", Translation: "cat", WordClass: "substantiv", Level: "A1"})
	mustCreate(t, svc, vocab.NewWord{Word: "bil", Translation: "car", WordClass: "substantiv", Level: "A1"})

	require.NoError(t, svc.AddFavorite(ctx, userID, w1.ID))
	require.NoError(t, svc.AddFavorite(ctx, userID, w2.ID))

	res, err := svc.QueryFavorites(ctx, userID, listquery.Params{Sort: listquery.SortAlphaAsc})
	require.NoError(t, err)
	require.Len(t, res.PageItems, 2)
	assert.Equal(t, "hund", res.PageItems[0].Word)
	assert.Equal(t, "katt", res.PageItems[1].Word)
	for _, w := range res.PageItems {
		assert.True(t, w.IsFavorite)
	}
}

func TestService_BuildQuiz(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	translations := []string{"dog", "cat", "car", "house", "tree"}
	words := []string{"hund", "katt", "bil", "hus", "träd"}
	for i := range words {
		mustCreate(t, svc, vocab.NewWord{
			Word: words[i], Translation: translations[i], WordClass: "substantiv", Level: "A1",
		})
	}
	mustCreate(t, svc, vocab.NewWord{Word: "förstå", Translation: "understand", WordClass: "verb", Level: "B1"})

	questions, err := svc.BuildQuiz(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, questions, 5) // fewer than QuizSize words at the level

	byWord := make(map[string]vocab.QuizQuestion)
	for _, q := range questions {
		byWord[q.Word] = q
	}
	for i, w := range words {
		q, ok := byWord[w]
		require.True(t, ok, "missing question for %q", w)
		assert.Contains(t, q.Options, translations[i])
		assert.LessOrEqual(t, len(q.Options), 4)
		seen := make(map[string]bool)
		for _, opt := range q.Options {
			assert.False(t, seen[opt], "duplicate option %q", opt)
			seen[opt] = true
		}
	}

	// no words at the level yields an empty quiz
	questions, err = svc.BuildQuiz(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, questions)

	// level is validated
	_, err = svc.BuildQuiz(ctx, "Z9")
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestService_SubmitQuiz(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	userID := 7

	w1 := mustCreate(t, svc, vocab.NewWord{Word: "hund", Translation: "dog", WordClass: "substantiv", Level: "A1", Meaning: "ett husdjur"})
	w2 := mustCreate(t, svc, vocab.NewWord{Word: "katt", Translation: "cat", WordClass: "substantiv", Level: "A1"})
	w3 := mustCreate(t, svc, vocab.NewWord{Word: "bil", Translation: "car", WordClass: "substantiv", Level: "A1"})

	res, err := svc.SubmitQuiz(ctx, userID, vocab.QuizSubmission{
		Level: "A1",
		Answers: []vocab.QuizAnswer{
			{WordID: w1.ID, Selected: "dog"},
			{WordID: w2.ID, Selected: "car"}, // wrong
			{WordID: w3.ID, Selected: "car"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Required) // ceil(3 * 0.7)
	assert.False(t, res.Passed)
	require.Len(t, res.IncorrectWords, 1)
	assert.Equal(t, w2.ID, res.IncorrectWords[0].WordID)
	assert.Equal(t, "cat", res.IncorrectWords[0].CorrectAnswer)
	assert.Equal(t, "car", res.IncorrectWords[0].Selected)

	// the attempt is stored for the dashboard
	history, err := svc.QuizHistory(ctx, userID, "A1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].CorrectAnswers)
	assert.Equal(t, 3, history[0].TotalQuestions)
	assert.False(t, history[0].Passed)
}

func TestService_QuizProgress(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	userID := 7

	w := mustCreate(t, svc, vocab.NewWord{Word: "hund", Translation: "dog", WordClass: "substantiv", Level: "A1"})

	submit := func(selected string) {
		_, err := svc.SubmitQuiz(ctx, userID, vocab.QuizSubmission{
			Level:   "A1",
			Answers: []vocab.QuizAnswer{{WordID: w.ID, Selected: selected}},
		})
		require.NoError(t, err)
	}
	submit("dog")
	submit("cat")

	prog, err := svc.QuizProgress(ctx, userID, "A1")
	require.NoError(t, err)
	assert.Equal(t, 2, prog.Attempts)
	assert.Equal(t, 1, prog.PassedCount)
	assert.Equal(t, 1, prog.BestScore)
	assert.Equal(t, 1, prog.BestTotal)
	assert.Equal(t, 50, prog.AverageScore)
	assert.NotEmpty(t, prog.LastAttempt)

	// no attempts yet at another level
	prog, err = svc.QuizProgress(ctx, userID, "B2")
	require.NoError(t, err)
	assert.Zero(t, prog.Attempts)
}
