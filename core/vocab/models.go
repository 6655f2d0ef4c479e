package vocab

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/sprakportal/backend/core"
)

// Word is a dictionary entry. IsFavorite is populated per viewer on fetch,
// never stored denormalized.
type Word struct {
	ID          int         `json:"id"`
	Word        string      `json:"word"`
	Translation string      `json:"translation"`
	WordClass   string      `json:"word_class"`
	Article     null.String `json:"article,omitempty"`
	Forms       []string    `json:"forms"`
	Meaning     string      `json:"meaning"`
	Synonyms    []string    `json:"synonyms"`
	Example     string      `json:"example"`
	Level       string      `json:"level"`
	IsFavorite  bool        `json:"is_favorite"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// FirstLetter returns the upper-cased initial used by the alphabet browser.
func (w Word) FirstLetter() string {
	for _, r := range w.Word {
		return strings.ToUpper(string([]rune{r}))
	}
	return ""
}

type NewWord struct {
	Word        string   `json:"word" validate:"required"`
	Translation string   `json:"translation" validate:"required"`
	WordClass   string   `json:"word_class" validate:"required"`
	Article     string   `json:"article"`
	Forms       []string `json:"forms"`
	Meaning     string   `json:"meaning"`
	Synonyms    []string `json:"synonyms"`
	Example     string   `json:"example"`
	Level       string   `json:"level" validate:"required,cefrlevel"`
}

func (nw *NewWord) Validate(svc *Service) error {
	nw.Word = core.CleanString(nw.Word)
	nw.Translation = core.CleanString(nw.Translation)
	nw.WordClass = core.CleanString(nw.WordClass, true /* lower */)
	return svc.validate.Struct(nw)
}

type UpdateWord struct {
	Word        string   `json:"word"`
	Translation string   `json:"translation"`
	WordClass   string   `json:"word_class"`
	Article     string   `json:"article"`
	Forms       []string `json:"forms"`
	Meaning     string   `json:"meaning"`
	Synonyms    []string `json:"synonyms"`
	Example     string   `json:"example"`
	Level       string   `json:"level" validate:"omitempty,cefrlevel"`
}

func (uw *UpdateWord) Validate(orig Word, svc *Service) error {
	if w := core.CleanString(uw.Word); w != "" {
		uw.Word = w
	} else {
		uw.Word = orig.Word
	}
	if tr := core.CleanString(uw.Translation); tr != "" {
		uw.Translation = tr
	} else {
		uw.Translation = orig.Translation
	}
	if wc := core.CleanString(uw.WordClass, true /* lower */); wc != "" {
		uw.WordClass = wc
	} else {
		uw.WordClass = orig.WordClass
	}
	if uw.Level == "" {
		uw.Level = orig.Level
	}
	return svc.validate.Struct(uw)
}

// QuizQuestion asks for the translation of a word among shuffled options.
type QuizQuestion struct {
	WordID  int      `json:"wordId"`
	Word    string   `json:"word"`
	Options []string `json:"options"`
}

// QuizAnswer is one selected option of a submission.
type QuizAnswer struct {
	WordID   int    `json:"wordId"`
	Selected string `json:"selected"`
}

type QuizSubmission struct {
	Level   string       `json:"level" validate:"required,cefrlevel"`
	Answers []QuizAnswer `json:"answers" validate:"required,min=1"`
}

func (qs *QuizSubmission) Validate(svc *Service) error { return svc.validate.Struct(qs) }

// IncorrectWord is the per-question feedback for a wrong answer.
type IncorrectWord struct {
	WordID        int    `json:"wordId"`
	Word          string `json:"word"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correctAnswer"`
	Meaning       string `json:"meaning,omitempty"`
}

type QuizResult struct {
	Correct        int             `json:"correct"`
	Total          int             `json:"total"`
	Required       int             `json:"required"`
	Passed         bool            `json:"passed"`
	IncorrectWords []IncorrectWord `json:"incorrectWords"`
}

// QuizHistoryEntry is one stored attempt, charted on the student dashboard.
type QuizHistoryEntry struct {
	ID             int       `json:"id"`
	UserID         int       `json:"-"`
	Level          string    `json:"level"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Passed         bool      `json:"passed"`
	CreatedAt      time.Time `json:"created_at"` // UTC
}

// QuizProgress summarizes a student's attempts at one level.
type QuizProgress struct {
	Level        string `json:"level"`
	Attempts     int    `json:"attempts"`
	PassedCount  int    `json:"passed_count"`
	BestScore    int    `json:"best_score"`
	BestTotal    int    `json:"best_total"`
	LastAttempt  string `json:"last_attempt,omitempty"`
	AverageScore int    `json:"average_score"` // percent, rounded
}
