package library

import (
	"context"
	"errors"
	"io"

	"musicbox/cache"
	"musicbox/model"
	"musicbox/repository"
	"musicbox/storage"
)

// ListSongs returns the catalog, cached per (limit, order).
func (s *Service) ListSongs(ctx context.Context, limit int, order string) ([]model.Song, bool, error) {
	if limit < 0 {
		limit = 0
	}
	return readThrough(ctx, s, cache.SongsKey(limit, order), func() []model.Song {
		return s.store.ListSongs(limit, order)
	})
}

// SearchSongs matches the query against title, artist, album and genre.
// An empty query yields an empty result and is never cached.
func (s *Service) SearchSongs(ctx context.Context, query string) ([]model.Song, bool, error) {
	q := repository.NormalizeQuery(query)
	if q == "" {
		return []model.Song{}, false, nil
	}
	return readThrough(ctx, s, cache.SearchKey(q), func() []model.Song {
		return s.store.SearchSongs(q)
	})
}

// GetSong returns one song by id.
func (s *Service) GetSong(id int64) (model.Song, error) {
	return s.store.GetSong(id)
}

// OpenSongFile opens the stored audio of a song for download. The caller closes the reader.
func (s *Service) OpenSongFile(ctx context.Context, id int64) (model.Song, io.ReadCloser, error) {
	song, err := s.store.GetSong(id)
	if err != nil {
		return model.Song{}, nil, err
	}
	if song.Filename == "" {
		return model.Song{}, nil, model.NewError(model.ErrNotFound, "歌曲文件不存在")
	}
	rc, err := s.media.Open(ctx, song.Filename)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return model.Song{}, nil, model.NewError(model.ErrNotFound, "歌曲文件不存在")
	}
	if err != nil {
		return model.Song{}, nil, err
	}
	return song, rc, nil
}

// OpenMedia opens a stored media object by name for the static /uploads route.
func (s *Service) OpenMedia(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.media.Open(ctx, name)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, model.NewError(model.ErrNotFound, "文件不存在")
	}
	return rc, err
}

// Queue returns the player queue, which is the whole catalog in insertion order.
func (s *Service) Queue() []model.Song {
	return s.store.ListSongs(0, repository.OrderDefault)
}
