package study

import (
	"time"

	"github.com/sprakportal/backend/core"
)

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type NewCategory struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCategory) Validate(svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	return svc.validate.Struct(nc)
}

// Section groups tests and videos under a category and level.
type Section struct {
	ID          int       `json:"id"`
	CategoryID  int       `json:"category_id"`
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type NewSection struct {
	CategoryID  int    `json:"category_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Level       string `json:"level" validate:"required,cefrlevel"`
	Description string `json:"description"`
}

func (ns *NewSection) Validate(svc *Service) error {
	ns.Title = core.CleanString(ns.Title)
	return svc.validate.Struct(ns)
}

type Test struct {
	ID        int       `json:"id"`
	SectionID int       `json:"section_id"`
	Title     string    `json:"title"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewTest struct {
	SectionID int    `json:"section_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Level     string `json:"level" validate:"required,cefrlevel"`
}

func (nt *NewTest) Validate(svc *Service) error {
	nt.Title = core.CleanString(nt.Title)
	return svc.validate.Struct(nt)
}

// Question carries its options; Description is the explanation shown with
// per-question feedback after submission.
type Question struct {
	ID          int       `json:"id"`
	TestID      int       `json:"test_id"`
	Text        string    `json:"text"`
	Description string    `json:"description,omitempty"`
	Options     []Option  `json:"options"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Option struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct,omitempty"`
}

// Sanitized strips the correct-answer flags before a test is handed to a student.
func (q Question) Sanitized() Question {
	opts := make([]Option, len(q.Options))
	for i, o := range q.Options {
		o.IsCorrect = false
		opts[i] = o
	}
	q.Options = opts
	return q
}

type NewQuestion struct {
	Text        string      `json:"text" validate:"required"`
	Description string      `json:"description"`
	Options     []NewOption `json:"options" validate:"required,min=2,dive"`
}

type NewOption struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

func (nq *NewQuestion) Validate(svc *Service) error {
	nq.Text = core.CleanString(nq.Text)
	if err := svc.validate.Struct(nq); err != nil {
		return err
	}
	var correct int
	for _, o := range nq.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "options", Error: "exactly one option must be correct"})
	}
	return nil
}

// TestSubmission is the student's selected option per question.
type TestSubmission struct {
	Answers []SelectedAnswer `json:"answers" validate:"required,min=1"`
}

type SelectedAnswer struct {
	QuestionID int `json:"question_id"`
	OptionID   int `json:"option_id"`
}

func (ts *TestSubmission) Validate(svc *Service) error { return svc.validate.Struct(ts) }

// QuestionFeedback explains one scored question.
type QuestionFeedback struct {
	QuestionID  int    `json:"question_id"`
	Text        string `json:"text"`
	Selected    string `json:"selected"`
	Correct     string `json:"correct"`
	WasCorrect  bool   `json:"was_correct"`
	Description string `json:"description,omitempty"`
}

// TestResult is one stored attempt; Passed is derived from the pass threshold
// at scoring time.
type TestResult struct {
	ID              int                `json:"id"`
	UserID          int                `json:"-"`
	TestID          int                `json:"test_id"`
	TestTitle       string             `json:"test_title"`
	CorrectAnswers  int                `json:"correct_answers"`
	TotalQuestions  int                `json:"total_questions"`
	RequiredCorrect int                `json:"required_correct"`
	Passed          bool               `json:"passed"`
	Feedback        []QuestionFeedback `json:"feedback,omitempty"`
	CreatedAt       time.Time          `json:"created_at"` // UTC
}
