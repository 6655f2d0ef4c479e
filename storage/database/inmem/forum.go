package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/sprakportal/backend/core/forum"
)

type forumTable struct {
	mutex     sync.RWMutex
	postSeq   sequence
	answerSeq sequence
	posts     map[int]*forum.Post
	answers   map[int]*forum.Answer
	votes     map[int]map[int]string // postID -> userID -> vote type
}

func newForumTable() *forumTable {
	return &forumTable{
		posts:   make(map[int]*forum.Post),
		answers: make(map[int]*forum.Answer),
		votes:   make(map[int]map[int]string),
	}
}

type forumRepository struct {
	db *forumTable
}

func NewForumRepository(db *DB) forum.Repository {
	return &forumRepository{db: db.forum}
}

// attach fills in vote counts and answers; callers hold at least a read lock.
func (repo *forumRepository) attach(p forum.Post) forum.Post {
	p.Likes, p.Dislikes = 0, 0
	for _, vote := range repo.db.votes[p.ID] {
		if vote == forum.VoteLike {
			p.Likes++
		} else {
			p.Dislikes++
		}
	}

	p.Answers = []forum.Answer{}
	for _, a := range repo.db.answers {
		if a.PostID == p.ID {
			p.Answers = append(p.Answers, *a)
		}
	}
	sort.Slice(p.Answers, func(i, j int) bool { return p.Answers[i].ID < p.Answers[j].ID })
	return p
}

func (repo *forumRepository) CreatePost(ctx context.Context, p forum.Post) (forum.Post, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p.ID = repo.db.postSeq.next()
	repo.db.posts[p.ID] = &p
	return repo.attach(p), nil
}

func (repo *forumRepository) QueryAllPosts(ctx context.Context) ([]forum.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	posts := make([]forum.Post, 0, len(repo.db.posts))
	for _, p := range repo.db.posts {
		posts = append(posts, repo.attach(*p))
	}
	return posts, nil
}

func (repo *forumRepository) GetPostByID(ctx context.Context, id int) (forum.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.posts[id]; ok {
		return repo.attach(*p), nil
	}
	return forum.Post{}, forum.ErrPostNotFound
}

func (repo *forumRepository) DeletePostsByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.posts, id)
		delete(repo.db.votes, id)
		for aid, a := range repo.db.answers {
			if a.PostID == id {
				delete(repo.db.answers, aid)
			}
		}
	}
	return nil
}

func (repo *forumRepository) CreateAnswer(ctx context.Context, a forum.Answer) (forum.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.posts[a.PostID]; !ok {
		return forum.Answer{}, forum.ErrPostNotFound
	}
	a.ID = repo.db.answerSeq.next()
	repo.db.answers[a.ID] = &a
	return a, nil
}

func (repo *forumRepository) DeleteAnswersByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.answers, id)
	}
	return nil
}

func (repo *forumRepository) SetVote(ctx context.Context, postID, userID int, voteType string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.posts[postID]; !ok {
		return forum.ErrPostNotFound
	}
	votes, ok := repo.db.votes[postID]
	if !ok {
		votes = make(map[int]string)
		repo.db.votes[postID] = votes
	}
	votes[userID] = voteType
	return nil
}
