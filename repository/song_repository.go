package repository

import (
	"strings"

	"musicbox/model"

	"github.com/samber/lo"
)

// 列表排序方式
const (
	OrderDefault = "default"
	OrderAsc     = "asc"
	OrderDesc    = "desc"
	OrderLatest  = "latest"
)

// SongRepository defines song and uploaded-song index operations.
type SongRepository interface {
	ListSongs(limit int, order string) []model.Song
	SearchSongs(query string) []model.Song
	GetSong(id int64) (model.Song, error)
	CreateSong(song model.Song) model.Song
	ListUploadedSongs(userID int64) []model.Song
	GetUploadedSong(id int64) (model.Song, error)
	DeleteUploadedSong(id int64) error
}

// ListSongs returns songs in insertion order (or newest first for desc/latest), truncated to limit when limit > 0.
func (s *MemoryStore) ListSongs(limit int, order string) []model.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := copySongs(s.songs)
	if order == OrderDesc || order == OrderLatest {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result
}

// SearchSongs 对标题、歌手、专辑、流派做不区分大小写的子串匹配，任一字段命中即可。
// 空查询返回空结果而不是全部歌曲。
func (s *MemoryStore) SearchSongs(query string) []model.Song {
	q := NormalizeQuery(query)
	if q == "" {
		return []model.Song{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := lo.Filter(s.songs, func(song *model.Song, _ int) bool {
		return strings.Contains(strings.ToLower(song.Title), q) ||
			strings.Contains(strings.ToLower(song.Artist), q) ||
			strings.Contains(strings.ToLower(song.Album), q) ||
			strings.Contains(strings.ToLower(song.Genre), q)
	})
	return copySongs(matched)
}

// NormalizeQuery trims and lowercases a search query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// GetSong retrieves a song by ID.
func (s *MemoryStore) GetSong(id int64) (model.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	song, ok := s.findSong(id)
	if !ok {
		return model.Song{}, model.NewError(model.ErrNotFound, "歌曲不存在")
	}
	return *song, nil
}

// CreateSong assigns an ID and stores the song. Songs with an owner are also added to the uploaded index.
func (s *MemoryStore) CreateSong(song model.Song) model.Song {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := song
	stored.ID = next(&s.seq.song)
	s.songs = append(s.songs, &stored)
	if stored.UserID != nil {
		s.uploaded = append(s.uploaded, &stored)
	}
	return stored
}

// ListUploadedSongs returns songs uploaded by the user.
func (s *MemoryStore) ListUploadedSongs(userID int64) []model.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySongs(lo.Filter(s.uploaded, func(song *model.Song, _ int) bool {
		return song.OwnedBy(userID)
	}))
}

// GetUploadedSong looks a song up in the uploaded index only.
func (s *MemoryStore) GetUploadedSong(id int64) (model.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	song, ok := lo.Find(s.uploaded, func(song *model.Song) bool { return song.ID == id })
	if !ok {
		return model.Song{}, model.NewError(model.ErrNotFound, "歌曲不存在")
	}
	return *song, nil
}

// DeleteUploadedSong removes the song from both the uploaded index and the song collection under one lock.
func (s *MemoryStore) DeleteUploadedSong(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfSong(s.uploaded, id)
	if idx == -1 {
		return model.NewError(model.ErrNotFound, "歌曲不存在")
	}
	s.uploaded = append(s.uploaded[:idx], s.uploaded[idx+1:]...)

	if idx := indexOfSong(s.songs, id); idx != -1 {
		s.songs = append(s.songs[:idx], s.songs[idx+1:]...)
	}
	return nil
}

func (s *MemoryStore) findSong(id int64) (*model.Song, bool) {
	return lo.Find(s.songs, func(song *model.Song) bool { return song.ID == id })
}

func indexOfSong(songs []*model.Song, id int64) int {
	for i, song := range songs {
		if song.ID == id {
			return i
		}
	}
	return -1
}

func copySongs(songs []*model.Song) []model.Song {
	return lo.Map(songs, func(song *model.Song, _ int) model.Song { return *song })
}
