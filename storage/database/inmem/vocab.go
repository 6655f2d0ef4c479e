package inmemdb

import (
	"context"
	"strings"
	"sync"

	"github.com/sprakportal/backend/core/vocab"
)

type vocabTable struct {
	mutex     sync.RWMutex
	wordSeq   sequence
	quizSeq   sequence
	words     map[int]*vocab.Word
	favorites map[int]map[int]bool // userID -> wordID set
	quizzes   map[int]*vocab.QuizHistoryEntry
}

func newVocabTable() *vocabTable {
	return &vocabTable{
		words:     make(map[int]*vocab.Word),
		favorites: make(map[int]map[int]bool),
		quizzes:   make(map[int]*vocab.QuizHistoryEntry),
	}
}

type vocabRepository struct {
	db *vocabTable
}

func NewVocabRepository(db *DB) vocab.Repository {
	return &vocabRepository{db: db.vocab}
}

func (repo *vocabRepository) CreateWord(ctx context.Context, w vocab.Word) (vocab.Word, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	w.ID = repo.db.wordSeq.next()
	repo.db.words[w.ID] = &w
	return w, nil
}

func (repo *vocabRepository) QueryAllWords(ctx context.Context) ([]vocab.Word, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	words := make([]vocab.Word, 0, len(repo.db.words))
	for _, w := range repo.db.words {
		words = append(words, *w)
	}
	return words, nil
}

func (repo *vocabRepository) GetWordByID(ctx context.Context, id int) (vocab.Word, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if w, ok := repo.db.words[id]; ok {
		return *w, nil
	}
	return vocab.Word{}, vocab.ErrNotFound
}

func (repo *vocabRepository) GetWordByText(ctx context.Context, word, wordClass string) (vocab.Word, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, w := range repo.db.words {
		if strings.EqualFold(w.Word, word) && strings.EqualFold(w.WordClass, wordClass) {
			return *w, nil
		}
	}
	return vocab.Word{}, vocab.ErrNotFound
}

func (repo *vocabRepository) UpdateWord(ctx context.Context, w vocab.Word) (vocab.Word, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.words[w.ID]; !ok {
		return vocab.Word{}, vocab.ErrNotFound
	}
	repo.db.words[w.ID] = &w
	return w, nil
}

func (repo *vocabRepository) DeleteWordsByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.words, id)
		for _, favs := range repo.db.favorites {
			delete(favs, id)
		}
	}
	return nil
}

func (repo *vocabRepository) AddFavoriteWord(ctx context.Context, userID, wordID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	favs, ok := repo.db.favorites[userID]
	if !ok {
		favs = make(map[int]bool)
		repo.db.favorites[userID] = favs
	}
	favs[wordID] = true
	return nil
}

func (repo *vocabRepository) RemoveFavoriteWord(ctx context.Context, userID, wordID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.favorites[userID], wordID)
	return nil
}

func (repo *vocabRepository) QueryFavoriteWordIDs(ctx context.Context, userID int) (map[int]bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make(map[int]bool, len(repo.db.favorites[userID]))
	for id := range repo.db.favorites[userID] {
		ids[id] = true
	}
	return ids, nil
}

func (repo *vocabRepository) CreateQuizResult(ctx context.Context, entry vocab.QuizHistoryEntry) (vocab.QuizHistoryEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	entry.ID = repo.db.quizSeq.next()
	repo.db.quizzes[entry.ID] = &entry
	return entry, nil
}

func (repo *vocabRepository) QueryQuizResults(ctx context.Context, userID int, level string) ([]vocab.QuizHistoryEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var entries []vocab.QuizHistoryEntry
	for _, e := range repo.db.quizzes {
		if e.UserID != userID {
			continue
		}
		if level != "" && e.Level != level {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}
