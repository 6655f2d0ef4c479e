package forum

import (
	"time"

	"github.com/sprakportal/backend/core"
)

// Vote types
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

type Post struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Likes      int       `json:"likes"`
	Dislikes   int       `json:"dislikes"`
	Answers    []Answer  `json:"answers"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type Answer struct {
	ID         int       `json:"id"`
	PostID     int       `json:"post_id"`
	UserID     int       `json:"user_id"`
	AuthorName string    `json:"author_name"`
	AuthorRole string    `json:"author_role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type NewPost struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (np *NewPost) Validate(svc *Service) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return svc.validate.Struct(np)
}

type NewAnswer struct {
	Content string `json:"content" validate:"required"`
}

func (na *NewAnswer) Validate(svc *Service) error {
	na.Content = core.CleanString(na.Content)
	return svc.validate.Struct(na)
}

type NewVote struct {
	Type string `json:"type" validate:"required,oneof=like dislike"`
}

func (nv *NewVote) Validate(svc *Service) error { return svc.validate.Struct(nv) }
