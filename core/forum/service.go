package forum

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/listquery"
	"github.com/sprakportal/backend/core/user"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrAnswerNotFound = errors.New("answer not found")
)

type (
	Repository interface {
		CreatePost(ctx context.Context, p Post) (Post, error)
		// QueryAllPosts returns posts with vote counts and answers attached.
		QueryAllPosts(ctx context.Context) ([]Post, error)
		GetPostByID(ctx context.Context, id int) (Post, error)
		DeletePostsByID(ctx context.Context, ids ...int) error

		CreateAnswer(ctx context.Context, a Answer) (Answer, error)
		DeleteAnswersByID(ctx context.Context, ids ...int) error

		// SetVote records the user's latest vote on a post, replacing any
		// earlier one.
		SetVote(ctx context.Context, postID, userID int, voteType string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Fields wires Post into the list query pipeline.
func Fields() listquery.Fields[Post] {
	return listquery.Fields[Post]{
		Search: []func(Post) string{
			func(p Post) string { return p.Title },
			func(p Post) string { return p.Content },
		},
		Text: func(p Post) string { return p.Title },
		Time: func(p Post) time.Time { return p.CreatedAt },
		ID:   func(p Post) int { return p.ID },
	}
}

func (svc *Service) CreatePost(ctx context.Context, author user.User, np NewPost) (Post, error) {
	return svc.repo.CreatePost(ctx, Post{
		UserID:     author.ID,
		AuthorName: author.Name,
		Title:      np.Title,
		Content:    np.Content,
		Answers:    []Answer{},
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) QueryPosts(ctx context.Context, params listquery.Params) (listquery.Result[Post], error) {
	posts, err := svc.repo.QueryAllPosts(ctx)
	if err != nil {
		return listquery.Result[Post]{}, err
	}
	return listquery.Apply(posts, params, Fields()), nil
}

// Count reports how many posts and answers the forum holds.
func (svc *Service) Count(ctx context.Context) (posts, answers int, err error) {
	all, err := svc.repo.QueryAllPosts(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range all {
		answers += len(p.Answers)
	}
	return len(all), answers, nil
}

func (svc *Service) GetPost(ctx context.Context, id int) (Post, error) {
	return svc.repo.GetPostByID(ctx, id)
}

func (svc *Service) Answer(ctx context.Context, postID int, author user.User, na NewAnswer) (Answer, error) {
	if _, err := svc.repo.GetPostByID(ctx, postID); err != nil {
		return Answer{}, err
	}
	return svc.repo.CreateAnswer(ctx, Answer{
		PostID:     postID,
		UserID:     author.ID,
		AuthorName: author.Name,
		AuthorRole: author.Role,
		Content:    na.Content,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) Vote(ctx context.Context, postID, userID int, nv NewVote) error {
	if _, err := svc.repo.GetPostByID(ctx, postID); err != nil {
		return err
	}
	return svc.repo.SetVote(ctx, postID, userID, nv.Type)
}

// Moderation; admin only.

func (svc *Service) DeletePosts(ctx context.Context, ids ...int) error {
	return svc.repo.DeletePostsByID(ctx, ids...)
}

func (svc *Service) DeleteAnswers(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAnswersByID(ctx, ids...)
}
