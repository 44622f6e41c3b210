package repository

import (
	"musicbox/model"

	"github.com/samber/lo"
)

// PlaylistRepository defines playlist and membership operations.
type PlaylistRepository interface {
	ListPlaylists(match func(model.Playlist) bool) []model.Playlist
	GetPlaylist(id int64) (model.Playlist, error)
	GetPlaylistWithSongs(id int64) (model.PlaylistWithSongs, error)
	CreatePlaylist(p model.Playlist) model.Playlist
	DeletePlaylist(id int64) error
	AddSongToPlaylist(playlistID, songID int64) (bool, error)
	RemoveSongFromPlaylist(playlistID, songID int64) error
	CountPlaylistSongs(playlistID int64) int
}

// ListPlaylists returns the playlists accepted by match, in creation order.
func (s *MemoryStore) ListPlaylists(match func(model.Playlist) bool) []model.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Playlist, 0, len(s.playlists))
	for _, p := range s.playlists {
		if match == nil || match(*p) {
			result = append(result, *p)
		}
	}
	return result
}

// GetPlaylist 根据ID获取歌单
func (s *MemoryStore) GetPlaylist(id int64) (model.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.findPlaylist(id)
	if !ok {
		return model.Playlist{}, model.NewError(model.ErrNotFound, "歌单不存在")
	}
	return *p, nil
}

// GetPlaylistWithSongs 获取歌单及其歌曲。
// 歌单删除时不会级联删除关联行，歌曲删除后关联行也会残留，这里跳过找不到的歌曲。
func (s *MemoryStore) GetPlaylistWithSongs(id int64) (model.PlaylistWithSongs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.findPlaylist(id)
	if !ok {
		return model.PlaylistWithSongs{}, model.NewError(model.ErrNotFound, "歌单不存在")
	}

	songs := make([]model.Song, 0)
	for _, ps := range s.playlistSongs {
		if ps.PlaylistID != id {
			continue
		}
		if song, ok := s.findSong(ps.SongID); ok {
			songs = append(songs, *song)
		}
	}
	return model.PlaylistWithSongs{Playlist: *p, Songs: songs}, nil
}

// CreatePlaylist 创建歌单，song_count 总是从0开始
func (s *MemoryStore) CreatePlaylist(p model.Playlist) model.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := p
	stored.ID = next(&s.seq.playlist)
	stored.SongCount = 0
	if stored.CreatedAt == nil {
		now := s.now()
		stored.CreatedAt = &now
	}
	s.playlists = append(s.playlists, &stored)
	return stored
}

// DeletePlaylist 删除歌单，不删除关联行
func (s *MemoryStore) DeletePlaylist(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.playlists {
		if p.ID == id {
			s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
			return nil
		}
	}
	return model.NewError(model.ErrNotFound, "歌单不存在")
}

// AddSongToPlaylist inserts a membership row. Adding an existing pair is a no-op and reports false.
func (s *MemoryStore) AddSongToPlaylist(playlistID, songID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.findPlaylist(playlistID)
	if !ok {
		return false, model.NewError(model.ErrNotFound, "歌单或歌曲不存在")
	}
	if _, ok := s.findSong(songID); !ok {
		return false, model.NewError(model.ErrNotFound, "歌单或歌曲不存在")
	}

	if s.membershipIndex(playlistID, songID) != -1 {
		return false, nil
	}

	s.playlistSongs = append(s.playlistSongs, model.PlaylistSong{
		ID:         next(&s.seq.playlistSong),
		PlaylistID: playlistID,
		SongID:     songID,
	})
	p.SongCount++
	return true, nil
}

// RemoveSongFromPlaylist 删除关联行并减少 song_count。
// 只有关联行存在且 song_count > 0 时才执行，否则返回 NotFound，保证计数不会变成负数。
func (s *MemoryStore) RemoveSongFromPlaylist(playlistID, songID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.findPlaylist(playlistID)
	if !ok {
		return model.NewError(model.ErrNotFound, "歌单不存在")
	}

	idx := s.membershipIndex(playlistID, songID)
	if idx == -1 || p.SongCount <= 0 {
		return model.NewError(model.ErrNotFound, "歌曲不在歌单中")
	}

	s.playlistSongs = append(s.playlistSongs[:idx], s.playlistSongs[idx+1:]...)
	p.SongCount--
	return nil
}

// CountPlaylistSongs returns the number of membership rows for the playlist.
func (s *MemoryStore) CountPlaylistSongs(playlistID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(lo.Filter(s.playlistSongs, func(ps model.PlaylistSong, _ int) bool {
		return ps.PlaylistID == playlistID
	}))
}

func (s *MemoryStore) findPlaylist(id int64) (*model.Playlist, bool) {
	return lo.Find(s.playlists, func(p *model.Playlist) bool { return p.ID == id })
}

func (s *MemoryStore) membershipIndex(playlistID, songID int64) int {
	for i, ps := range s.playlistSongs {
		if ps.PlaylistID == playlistID && ps.SongID == songID {
			return i
		}
	}
	return -1
}
