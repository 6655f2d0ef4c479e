package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/sprakportal/backend/core/forum"
)

type forumRepository struct {
	db *sqlx.DB
}

func NewForumRepository(db *sqlx.DB) forum.Repository {
	return &forumRepository{db: db}
}

const postQuery = `
	SELECT p.id, p.user_id, p.author_name, p.title, p.content, p.created_at,
	       COUNT(v.post_id) FILTER (WHERE v.vote_type = 'like')    AS likes,
	       COUNT(v.post_id) FILTER (WHERE v.vote_type = 'dislike') AS dislikes
	FROM post p
	LEFT JOIN vote v ON v.post_id = p.id`

const postGroupBy = ` GROUP BY p.id`

func (repo *forumRepository) attachAnswers(ctx context.Context, posts []forum.Post) error {
	byID := make(map[int]int, len(posts)) // post ID -> index
	ids := make([]int, 0, len(posts))
	for i := range posts {
		posts[i].Answers = []forum.Answer{}
		byID[posts[i].ID] = i
		ids = append(ids, posts[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, post_id, user_id, author_name, author_role, content, created_at
		 FROM answer WHERE post_id = ANY($1) ORDER BY id`, intArray(ids))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var a forum.Answer
		if err = rows.Scan(&a.ID, &a.PostID, &a.UserID, &a.AuthorName, &a.AuthorRole, &a.Content, &a.CreatedAt); err != nil {
			return err
		}
		idx := byID[a.PostID]
		posts[idx].Answers = append(posts[idx].Answers, a)
	}
	return rows.Err()
}

func (repo *forumRepository) CreatePost(ctx context.Context, p forum.Post) (forum.Post, error) {
	query := `INSERT INTO post (user_id, author_name, title, content, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, p.UserID, p.AuthorName, p.Title, p.Content, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return forum.Post{}, err
	}
	p.Answers = []forum.Answer{}
	return p, nil
}

func (repo *forumRepository) QueryAllPosts(ctx context.Context) ([]forum.Post, error) {
	rows, err := repo.db.QueryContext(ctx, postQuery+postGroupBy+` ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []forum.Post
	for rows.Next() {
		var p forum.Post
		if err = rows.Scan(&p.ID, &p.UserID, &p.AuthorName, &p.Title, &p.Content, &p.CreatedAt, &p.Likes, &p.Dislikes); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if err = repo.attachAnswers(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *forumRepository) GetPostByID(ctx context.Context, id int) (forum.Post, error) {
	var p forum.Post
	err := repo.db.QueryRowContext(ctx, postQuery+` WHERE p.id = $1`+postGroupBy, id).
		Scan(&p.ID, &p.UserID, &p.AuthorName, &p.Title, &p.Content, &p.CreatedAt, &p.Likes, &p.Dislikes)
	if err == sql.ErrNoRows {
		return forum.Post{}, forum.ErrPostNotFound
	}
	if err != nil {
		return forum.Post{}, err
	}
	posts := []forum.Post{p}
	if err = repo.attachAnswers(ctx, posts); err != nil {
		return forum.Post{}, err
	}
	return posts[0], nil
}

func (repo *forumRepository) DeletePostsByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM post WHERE id = ANY($1)`, intArray(ids))
	return err
}

func (repo *forumRepository) CreateAnswer(ctx context.Context, a forum.Answer) (forum.Answer, error) {
	query := `
		INSERT INTO answer (post_id, user_id, author_name, author_role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, a.PostID, a.UserID, a.AuthorName, a.AuthorRole, a.Content, a.CreatedAt).Scan(&a.ID)
	return a, err
}

func (repo *forumRepository) DeleteAnswersByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM answer WHERE id = ANY($1)`, intArray(ids))
	return err
}

func (repo *forumRepository) SetVote(ctx context.Context, postID, userID int, voteType string) error {
	query := `
		INSERT INTO vote (post_id, user_id, vote_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO UPDATE SET vote_type = EXCLUDED.vote_type`
	res, err := repo.db.ExecContext(ctx, query, postID, userID, voteType)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return forum.ErrPostNotFound
	}
	return nil
}
