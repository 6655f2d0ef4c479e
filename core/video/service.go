package video

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/listquery"
)

var ErrNotFound = errors.New("video not found")

type (
	Repository interface {
		CreateVideo(ctx context.Context, v Video) (Video, error)
		QueryAllVideos(ctx context.Context) ([]Video, error)
		GetVideoByID(ctx context.Context, id int) (Video, error)
		UpdateVideo(ctx context.Context, v Video) (Video, error)
		DeleteVideosByID(ctx context.Context, ids ...int) error

		AddFavoriteVideo(ctx context.Context, userID, videoID int) error
		RemoveFavoriteVideo(ctx context.Context, userID, videoID int) error
		QueryFavoriteVideoIDs(ctx context.Context, userID int) (map[int]bool, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Fields wires Video into the list query pipeline.
func Fields() listquery.Fields[Video] {
	return listquery.Fields[Video]{
		Search: []func(Video) string{
			func(v Video) string { return v.Title },
			func(v Video) string { return v.Description },
		},
		Filter: map[string]func(Video) string{
			"level":   func(v Video) string { return v.Level },
			"letter":  func(v Video) string { return v.FirstLetter() },
			"section": func(v Video) string { return strconv.Itoa(v.SectionID) },
		},
		Text: func(v Video) string { return v.Title },
		Time: func(v Video) time.Time { return v.CreatedAt },
		ID:   func(v Video) int { return v.ID },
	}
}

// Create records an uploaded video; filename is the stored media file name.
func (svc *Service) Create(ctx context.Context, nv NewVideo, filename string) (Video, error) {
	now := time.Now().UTC()
	return svc.repo.CreateVideo(ctx, Video{
		SectionID:   nv.SectionID,
		Title:       nv.Title,
		Level:       nv.Level,
		Description: nv.Description,
		Filename:    filename,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id, viewerID int) (Video, error) {
	v, err := svc.repo.GetVideoByID(ctx, id)
	if err != nil {
		return Video{}, err
	}
	if viewerID != 0 {
		favs, err := svc.repo.QueryFavoriteVideoIDs(ctx, viewerID)
		if err != nil {
			return Video{}, err
		}
		v.IsFavorite = favs[v.ID]
	}
	return v, nil
}

// Count reports how many lessons are published.
func (svc *Service) Count(ctx context.Context) (int, error) {
	videos, err := svc.repo.QueryAllVideos(ctx)
	if err != nil {
		return 0, err
	}
	return len(videos), nil
}

func (svc *Service) Query(ctx context.Context, viewerID int, params listquery.Params) (listquery.Result[Video], error) {
	videos, err := svc.repo.QueryAllVideos(ctx)
	if err != nil {
		return listquery.Result[Video]{}, err
	}
	if viewerID != 0 {
		favs, err := svc.repo.QueryFavoriteVideoIDs(ctx, viewerID)
		if err != nil {
			return listquery.Result[Video]{}, err
		}
		for i := range videos {
			videos[i].IsFavorite = favs[videos[i].ID]
		}
	}
	return listquery.Apply(videos, params, Fields()), nil
}

func (svc *Service) Update(ctx context.Context, id int, uv UpdateVideo) (Video, error) {
	orig, err := svc.repo.GetVideoByID(ctx, id)
	if err != nil {
		return Video{}, err
	}
	orig.SectionID = uv.SectionID
	orig.Title = uv.Title
	orig.Level = uv.Level
	orig.Description = uv.Description
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateVideo(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteVideosByID(ctx, ids...)
}

// Favorites

func (svc *Service) AddFavorite(ctx context.Context, userID, videoID int) error {
	if _, err := svc.repo.GetVideoByID(ctx, videoID); err != nil {
		return err
	}
	return svc.repo.AddFavoriteVideo(ctx, userID, videoID)
}

func (svc *Service) RemoveFavorite(ctx context.Context, userID, videoID int) error {
	return svc.repo.RemoveFavoriteVideo(ctx, userID, videoID)
}

// ToggleFavorite issues the complementary call for the current membership and
// reports the new state; local state changes only after the store confirms.
func (svc *Service) ToggleFavorite(ctx context.Context, userID, videoID int) (bool, error) {
	favs, err := svc.repo.QueryFavoriteVideoIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	if favs[videoID] {
		if err := svc.RemoveFavorite(ctx, userID, videoID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := svc.AddFavorite(ctx, userID, videoID); err != nil {
		return false, err
	}
	return true, nil
}

func (svc *Service) QueryFavorites(ctx context.Context, userID int, params listquery.Params) (listquery.Result[Video], error) {
	videos, err := svc.repo.QueryAllVideos(ctx)
	if err != nil {
		return listquery.Result[Video]{}, err
	}
	favs, err := svc.repo.QueryFavoriteVideoIDs(ctx, userID)
	if err != nil {
		return listquery.Result[Video]{}, err
	}
	kept := videos[:0]
	for _, v := range videos {
		if favs[v.ID] {
			v.IsFavorite = true
			kept = append(kept, v)
		}
	}
	return listquery.Apply(kept, params, Fields()), nil
}
