package vocab

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/listquery"
)

var (
	ErrNotFound   = errors.New("word not found")
	ErrWordExists = errors.New("this word already exists")
)

// QuizSize is how many questions a vocabulary quiz asks, fewer when the level
// does not have enough words.
const QuizSize = 10

type (
	Repository interface {
		CreateWord(ctx context.Context, w Word) (Word, error)
		QueryAllWords(ctx context.Context) ([]Word, error)
		GetWordByID(ctx context.Context, id int) (Word, error)
		// GetWordByText does a case-insensitive match on the word and word class.
		GetWordByText(ctx context.Context, word, wordClass string) (Word, error)
		UpdateWord(ctx context.Context, w Word) (Word, error)
		DeleteWordsByID(ctx context.Context, ids ...int) error

		AddFavoriteWord(ctx context.Context, userID, wordID int) error
		RemoveFavoriteWord(ctx context.Context, userID, wordID int) error
		QueryFavoriteWordIDs(ctx context.Context, userID int) (map[int]bool, error)

		CreateQuizResult(ctx context.Context, entry QuizHistoryEntry) (QuizHistoryEntry, error)
		QueryQuizResults(ctx context.Context, userID int, level string) ([]QuizHistoryEntry, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Fields wires Word into the list query pipeline: free text over the word and
// its translation, categorical filters on level, letter and word class.
func Fields() listquery.Fields[Word] {
	return listquery.Fields[Word]{
		Search: []func(Word) string{
			func(w Word) string { return w.Word },
			func(w Word) string { return w.Translation },
		},
		Filter: map[string]func(Word) string{
			"level":      func(w Word) string { return w.Level },
			"letter":     func(w Word) string { return w.FirstLetter() },
			"word_class": func(w Word) string { return w.WordClass },
		},
		Text: func(w Word) string { return w.Word },
		Time: func(w Word) time.Time { return w.CreatedAt },
		ID:   func(w Word) int { return w.ID },
	}
}

// Create adds a word. Unless force is set, a word already present with the
// same word class is reported as a conflict carrying the existing record so
// the admin screen can offer a forced retry.
func (svc *Service) Create(ctx context.Context, nw NewWord, force bool) (Word, error) {
	if !force {
		if existing, err := svc.repo.GetWordByText(ctx, nw.Word, nw.WordClass); err == nil {
			return Word{}, core.NewConflictError(ErrWordExists, existing)
		} else if errors.Cause(err) != ErrNotFound {
			return Word{}, err
		}
	}

	now := time.Now().UTC()
	w := Word{
		Word:        nw.Word,
		Translation: nw.Translation,
		WordClass:   nw.WordClass,
		Forms:       nw.Forms,
		Meaning:     nw.Meaning,
		Synonyms:    nw.Synonyms,
		Example:     nw.Example,
		Level:       nw.Level,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if nw.Article != "" {
		w.Article = null.StringFrom(nw.Article)
	}
	return svc.repo.CreateWord(ctx, w)
}

// Count reports the dictionary size, total and per CEFR level.
func (svc *Service) Count(ctx context.Context) (int, map[string]int, error) {
	words, err := svc.repo.QueryAllWords(ctx)
	if err != nil {
		return 0, nil, errors.Wrap(err, "querying words")
	}
	byLevel := make(map[string]int)
	for _, w := range words {
		byLevel[w.Level]++
	}
	return len(words), byLevel, nil
}

func (svc *Service) GetByID(ctx context.Context, id, viewerID int) (Word, error) {
	w, err := svc.repo.GetWordByID(ctx, id)
	if err != nil {
		return Word{}, err
	}
	if viewerID != 0 {
		favs, err := svc.repo.QueryFavoriteWordIDs(ctx, viewerID)
		if err != nil {
			return Word{}, err
		}
		w.IsFavorite = favs[w.ID]
	}
	return w, nil
}

// Query fetches the full dictionary and runs the list pipeline over it.
// viewerID 0 (guests) skips favorite annotation.
func (svc *Service) Query(ctx context.Context, viewerID int, params listquery.Params) (listquery.Result[Word], error) {
	words, err := svc.repo.QueryAllWords(ctx)
	if err != nil {
		return listquery.Result[Word]{}, err
	}
	if viewerID != 0 {
		favs, err := svc.repo.QueryFavoriteWordIDs(ctx, viewerID)
		if err != nil {
			return listquery.Result[Word]{}, err
		}
		for i := range words {
			words[i].IsFavorite = favs[words[i].ID]
		}
	}
	return listquery.Apply(words, params, Fields()), nil
}

func (svc *Service) Update(ctx context.Context, id int, uw UpdateWord) (Word, error) {
	w := Word{
		ID:          id,
		Word:        uw.Word,
		Translation: uw.Translation,
		WordClass:   uw.WordClass,
		Forms:       uw.Forms,
		Meaning:     uw.Meaning,
		Synonyms:    uw.Synonyms,
		Example:     uw.Example,
		Level:       uw.Level,
		UpdatedAt:   time.Now().UTC(),
	}
	if uw.Article != "" {
		w.Article = null.StringFrom(uw.Article)
	}
	return svc.repo.UpdateWord(ctx, w)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteWordsByID(ctx, ids...)
}

// Favorites

func (svc *Service) AddFavorite(ctx context.Context, userID, wordID int) error {
	if _, err := svc.repo.GetWordByID(ctx, wordID); err != nil {
		return err
	}
	return svc.repo.AddFavoriteWord(ctx, userID, wordID)
}

func (svc *Service) RemoveFavorite(ctx context.Context, userID, wordID int) error {
	return svc.repo.RemoveFavoriteWord(ctx, userID, wordID)
}

// ToggleFavorite issues the complementary call for the current membership and
// reports the new state. Nothing changes unless the store confirms the write.
func (svc *Service) ToggleFavorite(ctx context.Context, userID, wordID int) (bool, error) {
	favs, err := svc.repo.QueryFavoriteWordIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	if favs[wordID] {
		if err := svc.RemoveFavorite(ctx, userID, wordID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := svc.AddFavorite(ctx, userID, wordID); err != nil {
		return false, err
	}
	return true, nil
}

func (svc *Service) QueryFavorites(ctx context.Context, userID int, params listquery.Params) (listquery.Result[Word], error) {
	words, err := svc.repo.QueryAllWords(ctx)
	if err != nil {
		return listquery.Result[Word]{}, err
	}
	favs, err := svc.repo.QueryFavoriteWordIDs(ctx, userID)
	if err != nil {
		return listquery.Result[Word]{}, err
	}
	kept := words[:0]
	for _, w := range words {
		if favs[w.ID] {
			w.IsFavorite = true
			kept = append(kept, w)
		}
	}
	return listquery.Apply(kept, params, Fields()), nil
}

// Quiz

// BuildQuiz picks up to QuizSize random words of the level and builds one
// question per word, each with the correct translation among 3 distractors.
func (svc *Service) BuildQuiz(ctx context.Context, level string) ([]QuizQuestion, error) {
	if !core.IsCEFRLevel(level) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "level", Error: "must be one of A1, A2, B1, B2, C1"})
	}

	all, err := svc.repo.QueryAllWords(ctx)
	if err != nil {
		return nil, err
	}

	var pool []Word
	for _, w := range all {
		if w.Level == level {
			pool = append(pool, w)
		}
	}
	if len(pool) == 0 {
		return []QuizQuestion{}, nil
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	n := QuizSize
	if len(pool) < n {
		n = len(pool)
	}

	questions := make([]QuizQuestion, 0, n)
	for _, w := range pool[:n] {
		questions = append(questions, QuizQuestion{
			WordID:  w.ID,
			Word:    w.Word,
			Options: buildOptions(w, all),
		})
	}
	return questions, nil
}

// buildOptions returns the correct translation plus up to 3 distinct
// distractor translations, shuffled.
func buildOptions(w Word, all []Word) []string {
	seen := map[string]bool{w.Translation: true}
	var distractors []string
	for _, other := range all {
		if other.ID == w.ID || seen[other.Translation] {
			continue
		}
		seen[other.Translation] = true
		distractors = append(distractors, other.Translation)
	}
	rand.Shuffle(len(distractors), func(i, j int) { distractors[i], distractors[j] = distractors[j], distractors[i] })
	if len(distractors) > 3 {
		distractors = distractors[:3]
	}

	options := append(distractors, w.Translation)
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}

// SubmitQuiz scores a submission server-side, stores the attempt and returns
// the per-question feedback.
func (svc *Service) SubmitQuiz(ctx context.Context, userID int, sub QuizSubmission) (QuizResult, error) {
	if err := sub.Validate(svc); err != nil {
		return QuizResult{}, err
	}

	res := QuizResult{
		Total:          len(sub.Answers),
		IncorrectWords: []IncorrectWord{},
	}
	for _, ans := range sub.Answers {
		w, err := svc.repo.GetWordByID(ctx, ans.WordID)
		if err != nil {
			return QuizResult{}, errors.Wrapf(err, "loading quiz word %d", ans.WordID)
		}
		if w.Translation == ans.Selected {
			res.Correct++
			continue
		}
		res.IncorrectWords = append(res.IncorrectWords, IncorrectWord{
			WordID:        w.ID,
			Word:          w.Word,
			Selected:      ans.Selected,
			CorrectAnswer: w.Translation,
			Meaning:       w.Meaning,
		})
	}
	res.Required = core.RequiredCorrect(res.Total)
	res.Passed = core.Passed(res.Correct, res.Total)

	_, err := svc.repo.CreateQuizResult(ctx, QuizHistoryEntry{
		UserID:         userID,
		Level:          sub.Level,
		CorrectAnswers: res.Correct,
		TotalQuestions: res.Total,
		Passed:         res.Passed,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return QuizResult{}, errors.Wrap(err, "storing quiz result")
	}
	return res, nil
}

func (svc *Service) QuizHistory(ctx context.Context, userID int, level string) ([]QuizHistoryEntry, error) {
	entries, err := svc.repo.QueryQuizResults(ctx, userID, level)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []QuizHistoryEntry{}
	}
	return entries, nil
}

func (svc *Service) QuizProgress(ctx context.Context, userID int, level string) (QuizProgress, error) {
	entries, err := svc.repo.QueryQuizResults(ctx, userID, level)
	if err != nil {
		return QuizProgress{}, err
	}

	prog := QuizProgress{Level: level, Attempts: len(entries)}
	if len(entries) == 0 {
		return prog, nil
	}

	var pctSum float64
	var last time.Time
	for _, e := range entries {
		if e.Passed {
			prog.PassedCount++
		}
		if e.TotalQuestions > 0 {
			pct := float64(e.CorrectAnswers) / float64(e.TotalQuestions)
			pctSum += pct
			if best := float64(prog.BestScore) / float64(max(prog.BestTotal, 1)); pct > best || prog.BestTotal == 0 {
				prog.BestScore, prog.BestTotal = e.CorrectAnswers, e.TotalQuestions
			}
		}
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	prog.AverageScore = int(math.Round(pctSum / float64(len(entries)) * 100))
	if !last.IsZero() {
		prog.LastAttempt = last.Format(time.RFC3339)
	}
	return prog, nil
}
