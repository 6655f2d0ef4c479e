package inmemdb

import (
	"context"
	"sync"

	"github.com/sprakportal/backend/core/study"
)

type studyTable struct {
	mutex       sync.RWMutex
	categorySeq sequence
	sectionSeq  sequence
	testSeq     sequence
	questionSeq sequence
	optionSeq   sequence
	resultSeq   sequence
	categories  map[int]*study.Category
	sections    map[int]*study.Section
	tests       map[int]*study.Test
	questions   map[int]*study.Question
	results     map[int]*study.TestResult
}

func newStudyTable() *studyTable {
	return &studyTable{
		categories: make(map[int]*study.Category),
		sections:   make(map[int]*study.Section),
		tests:      make(map[int]*study.Test),
		questions:  make(map[int]*study.Question),
		results:    make(map[int]*study.TestResult),
	}
}

type studyRepository struct {
	db *studyTable
}

func NewStudyRepository(db *DB) study.Repository {
	return &studyRepository{db: db.study}
}

func (repo *studyRepository) CreateCategory(ctx context.Context, c study.Category) (study.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.categorySeq.next()
	repo.db.categories[c.ID] = &c
	return c, nil
}

func (repo *studyRepository) QueryAllCategories(ctx context.Context) ([]study.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cats := make([]study.Category, 0, len(repo.db.categories))
	for _, c := range repo.db.categories {
		cats = append(cats, *c)
	}
	return cats, nil
}

func (repo *studyRepository) GetCategoryByID(ctx context.Context, id int) (study.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.categories[id]; ok {
		return *c, nil
	}
	return study.Category{}, study.ErrCategoryNotFound
}

func (repo *studyRepository) UpdateCategory(ctx context.Context, c study.Category) (study.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.categories[c.ID]; !ok {
		return study.Category{}, study.ErrCategoryNotFound
	}
	repo.db.categories[c.ID] = &c
	return c, nil
}

func (repo *studyRepository) DeleteCategoriesByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.categories, id)
	}
	return nil
}

func (repo *studyRepository) CreateSection(ctx context.Context, s study.Section) (study.Section, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = repo.db.sectionSeq.next()
	repo.db.sections[s.ID] = &s
	return s, nil
}

func (repo *studyRepository) QueryAllSections(ctx context.Context) ([]study.Section, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	secs := make([]study.Section, 0, len(repo.db.sections))
	for _, s := range repo.db.sections {
		secs = append(secs, *s)
	}
	return secs, nil
}

func (repo *studyRepository) GetSectionByID(ctx context.Context, id int) (study.Section, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.sections[id]; ok {
		return *s, nil
	}
	return study.Section{}, study.ErrSectionNotFound
}

func (repo *studyRepository) UpdateSection(ctx context.Context, s study.Section) (study.Section, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.sections[s.ID]; !ok {
		return study.Section{}, study.ErrSectionNotFound
	}
	repo.db.sections[s.ID] = &s
	return s, nil
}

func (repo *studyRepository) DeleteSectionsByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.sections, id)
	}
	return nil
}

func (repo *studyRepository) CreateTest(ctx context.Context, t study.Test) (study.Test, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = repo.db.testSeq.next()
	repo.db.tests[t.ID] = &t
	return t, nil
}

func (repo *studyRepository) QueryTestsBySection(ctx context.Context, sectionID int) ([]study.Test, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var tests []study.Test
	for _, t := range repo.db.tests {
		if t.SectionID == sectionID {
			tests = append(tests, *t)
		}
	}
	return tests, nil
}

func (repo *studyRepository) GetTestByID(ctx context.Context, id int) (study.Test, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.tests[id]; ok {
		return *t, nil
	}
	return study.Test{}, study.ErrTestNotFound
}

func (repo *studyRepository) UpdateTest(ctx context.Context, t study.Test) (study.Test, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tests[t.ID]; !ok {
		return study.Test{}, study.ErrTestNotFound
	}
	repo.db.tests[t.ID] = &t
	return t, nil
}

func (repo *studyRepository) DeleteTestsByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.tests, id)
		for qid, q := range repo.db.questions {
			if q.TestID == id {
				delete(repo.db.questions, qid)
			}
		}
	}
	return nil
}

func (repo *studyRepository) CreateQuestion(ctx context.Context, q study.Question) (study.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q.ID = repo.db.questionSeq.next()
	for i := range q.Options {
		q.Options[i].ID = repo.db.optionSeq.next()
		q.Options[i].QuestionID = q.ID
	}
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *studyRepository) QueryQuestionsByTest(ctx context.Context, testID int) ([]study.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var questions []study.Question
	for _, q := range repo.db.questions {
		if q.TestID == testID {
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

func (repo *studyRepository) GetQuestionByID(ctx context.Context, id int) (study.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.questions[id]; ok {
		return *q, nil
	}
	return study.Question{}, study.ErrQuestionNotFound
}

func (repo *studyRepository) UpdateQuestion(ctx context.Context, q study.Question) (study.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[q.ID]; !ok {
		return study.Question{}, study.ErrQuestionNotFound
	}
	for i := range q.Options {
		if q.Options[i].ID == 0 {
			q.Options[i].ID = repo.db.optionSeq.next()
		}
		q.Options[i].QuestionID = q.ID
	}
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *studyRepository) DeleteQuestionsByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.questions, id)
	}
	return nil
}

func (repo *studyRepository) CreateTestResult(ctx context.Context, r study.TestResult) (study.TestResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = repo.db.resultSeq.next()
	repo.db.results[r.ID] = &r
	return r, nil
}

func (repo *studyRepository) QueryTestResultsByUser(ctx context.Context, userID int) ([]study.TestResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var results []study.TestResult
	for _, r := range repo.db.results {
		if r.UserID == userID {
			results = append(results, *r)
		}
	}
	return results, nil
}
