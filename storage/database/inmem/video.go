package inmemdb

import (
	"context"
	"sync"

	"github.com/sprakportal/backend/core/video"
)

type videoTable struct {
	mutex     sync.RWMutex
	seq       sequence
	videos    map[int]*video.Video
	favorites map[int]map[int]bool // userID -> videoID set
}

func newVideoTable() *videoTable {
	return &videoTable{
		videos:    make(map[int]*video.Video),
		favorites: make(map[int]map[int]bool),
	}
}

type videoRepository struct {
	db *videoTable
}

func NewVideoRepository(db *DB) video.Repository {
	return &videoRepository{db: db.video}
}

func (repo *videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	v.ID = repo.db.seq.next()
	repo.db.videos[v.ID] = &v
	return v, nil
}

func (repo *videoRepository) QueryAllVideos(ctx context.Context) ([]video.Video, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	videos := make([]video.Video, 0, len(repo.db.videos))
	for _, v := range repo.db.videos {
		videos = append(videos, *v)
	}
	return videos, nil
}

func (repo *videoRepository) GetVideoByID(ctx context.Context, id int) (video.Video, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if v, ok := repo.db.videos[id]; ok {
		return *v, nil
	}
	return video.Video{}, video.ErrNotFound
}

func (repo *videoRepository) UpdateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.videos[v.ID]; !ok {
		return video.Video{}, video.ErrNotFound
	}
	repo.db.videos[v.ID] = &v
	return v, nil
}

func (repo *videoRepository) DeleteVideosByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.videos, id)
		for _, favs := range repo.db.favorites {
			delete(favs, id)
		}
	}
	return nil
}

func (repo *videoRepository) AddFavoriteVideo(ctx context.Context, userID, videoID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	favs, ok := repo.db.favorites[userID]
	if !ok {
		favs = make(map[int]bool)
		repo.db.favorites[userID] = favs
	}
	favs[videoID] = true
	return nil
}

func (repo *videoRepository) RemoveFavoriteVideo(ctx context.Context, userID, videoID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.favorites[userID], videoID)
	return nil
}

func (repo *videoRepository) QueryFavoriteVideoIDs(ctx context.Context, userID int) (map[int]bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make(map[int]bool, len(repo.db.favorites[userID]))
	for id := range repo.db.favorites[userID] {
		ids[id] = true
	}
	return ids, nil
}
