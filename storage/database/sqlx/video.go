package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/sprakportal/backend/core/video"
)

const videoColumns = `id, section_id, title, level, description, filename, created_at, updated_at`

type videoRepository struct {
	db *sqlx.DB
}

func NewVideoRepository(db *sqlx.DB) video.Repository {
	return &videoRepository{db: db}
}

func scanVideo(row interface{ Scan(...interface{}) error }) (video.Video, error) {
	var v video.Video
	err := row.Scan(&v.ID, &v.SectionID, &v.Title, &v.Level, &v.Description, &v.Filename, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (repo *videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	query := `
		INSERT INTO video (section_id, title, level, description, filename, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		v.SectionID, v.Title, v.Level, v.Description, v.Filename, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	return v, err
}

func (repo *videoRepository) QueryAllVideos(ctx context.Context) ([]video.Video, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM video ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var videos []video.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (repo *videoRepository) GetVideoByID(ctx context.Context, id int) (video.Video, error) {
	v, err := scanVideo(repo.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM video WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return video.Video{}, video.ErrNotFound
	}
	return v, err
}

func (repo *videoRepository) UpdateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	query := `
		UPDATE video
		SET section_id = $1, title = $2, level = $3, description = $4, filename = $5, updated_at = $6
		WHERE id = $7
		RETURNING created_at`
	err := repo.db.QueryRowContext(ctx, query,
		v.SectionID, v.Title, v.Level, v.Description, v.Filename, v.UpdatedAt, v.ID,
	).Scan(&v.CreatedAt)
	if err == sql.ErrNoRows {
		return video.Video{}, video.ErrNotFound
	}
	return v, err
}

func (repo *videoRepository) DeleteVideosByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM video WHERE id = ANY($1)`, intArray(ids))
	return err
}

func (repo *videoRepository) AddFavoriteVideo(ctx context.Context, userID, videoID int) error {
	query := `INSERT INTO favorite_video (user_id, video_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := repo.db.ExecContext(ctx, query, userID, videoID)
	return err
}

func (repo *videoRepository) RemoveFavoriteVideo(ctx context.Context, userID, videoID int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM favorite_video WHERE user_id = $1 AND video_id = $2`, userID, videoID)
	return err
}

func (repo *videoRepository) QueryFavoriteVideoIDs(ctx context.Context, userID int) (map[int]bool, error) {
	var ids []int
	if err := repo.db.SelectContext(ctx, &ids, `SELECT video_id FROM favorite_video WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	favs := make(map[int]bool, len(ids))
	for _, id := range ids {
		favs[id] = true
	}
	return favs, nil
}
