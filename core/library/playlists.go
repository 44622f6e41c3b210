package library

import (
	"context"
	"strings"

	"musicbox/cache"
	"musicbox/core/auth"
	"musicbox/logger"
	"musicbox/model"
)

// ListPlaylists returns the user's own playlists plus public ones.
func (s *Service) ListPlaylists(ctx context.Context, user *model.User) ([]model.Playlist, bool, error) {
	return readThrough(ctx, s, cache.PlaylistsKey(user.ID), func() []model.Playlist {
		return s.store.ListPlaylists(func(p model.Playlist) bool {
			return auth.CanAccessPlaylist(user, &p)
		})
	})
}

// GetPlaylist returns a playlist with its songs. Missing playlists are NotFound, foreign ones Forbidden.
func (s *Service) GetPlaylist(user *model.User, id int64) (model.PlaylistWithSongs, error) {
	p, err := s.store.GetPlaylistWithSongs(id)
	if err != nil {
		return model.PlaylistWithSongs{}, err
	}
	if err := auth.AuthorizePlaylist(user, &p.Playlist, "无权访问此歌单"); err != nil {
		return model.PlaylistWithSongs{}, err
	}
	return p, nil
}

// NewPlaylist is the input of CreatePlaylist. Cover is optional.
type NewPlaylist struct {
	Name        string
	Description string
	Cover       *FileUpload
}

// CreatePlaylist stores a new playlist owned by user.
func (s *Service) CreatePlaylist(ctx context.Context, user *model.User, in NewPlaylist) (model.Playlist, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Playlist{}, model.NewError(model.ErrValidation, "歌单名称不能为空")
	}

	cover := s.defaultCover()
	if in.Cover != nil {
		name, err := s.saveUpload(ctx, in.Cover)
		if err != nil {
			return model.Playlist{}, err
		}
		cover = uploadURL(name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner := user.ID
	p := s.store.CreatePlaylist(model.Playlist{
		Name:        in.Name,
		Description: in.Description,
		Cover:       cover,
		UserID:      &owner,
	})
	s.invalidate(ctx, cache.NamespacePlaylists)
	logger.Info("创建歌单", logger.Int64("playlistID", p.ID), logger.Int64("userID", user.ID))
	return p, nil
}

// DeletePlaylist removes a playlist the user may modify. Memberships are left in place.
func (s *Service) DeletePlaylist(ctx context.Context, user *model.User, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetPlaylist(id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizePlaylist(user, &p, "无权删除此歌单"); err != nil {
		return err
	}
	if err := s.store.DeletePlaylist(id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.NamespacePlaylists)
	return nil
}

// AddSongToPlaylist adds a song to a playlist. Adding a song twice is accepted and changes nothing.
func (s *Service) AddSongToPlaylist(ctx context.Context, user *model.User, playlistID, songID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetPlaylist(playlistID)
	if err != nil {
		return model.NewError(model.ErrNotFound, "歌单或歌曲不存在")
	}
	if err := auth.AuthorizePlaylist(user, &p, "无权操作此歌单"); err != nil {
		return err
	}
	added, err := s.store.AddSongToPlaylist(playlistID, songID)
	if err != nil {
		return err
	}
	if added {
		s.invalidate(ctx, cache.NamespacePlaylists)
	}
	return nil
}

// RemoveSongFromPlaylist removes a song from a playlist.
func (s *Service) RemoveSongFromPlaylist(ctx context.Context, user *model.User, playlistID, songID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetPlaylist(playlistID)
	if err != nil {
		return err
	}
	if err := auth.AuthorizePlaylist(user, &p, "无权操作此歌单"); err != nil {
		return err
	}
	if err := s.store.RemoveSongFromPlaylist(playlistID, songID); err != nil {
		return err
	}
	s.invalidate(ctx, cache.NamespacePlaylists)
	return nil
}
