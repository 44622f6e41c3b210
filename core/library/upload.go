package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"musicbox/cache"
	"musicbox/core/audio"
	"musicbox/core/auth"
	"musicbox/logger"
	"musicbox/model"
	"musicbox/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// 上传歌曲缺省的元数据
const (
	DefaultArtist = "未知歌手"
	DefaultAlbum  = "未知专辑"
	DefaultGenre  = "其他"

	uploadsPrefix = "/uploads/"
)

// FileUpload is one uploaded file as received from the client.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// NewSong is the input of UploadSong. Audio is required; empty metadata fields get defaults.
type NewSong struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Audio  *FileUpload
	Cover  *FileUpload
}

func uploadURL(name string) string {
	return uploadsPrefix + name
}

func storedName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

func (s *Service) defaultCover() string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/300/300", s.now().UnixMilli())
}

func contentType(f *FileUpload, name string) string {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	return storage.ContentTypeFor(name)
}

// saveUpload stores f under a fresh name and returns that name.
func (s *Service) saveUpload(ctx context.Context, f *FileUpload) (string, error) {
	name := storedName(f.Filename)
	if err := s.media.Save(ctx, name, contentType(f, name), f.Body, f.Size); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", f.Filename, err)
	}
	return name, nil
}

// spool copies the audio into a temp file so it can be probed and stored independently.
func spool(f *FileUpload) (string, int64, error) {
	tmp, err := os.CreateTemp("", "musicbox-upload-*"+filepath.Ext(f.Filename))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tmp.Close()

	n, err := io.Copy(tmp, f.Body)
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to read upload: %w", err)
	}
	return tmp.Name(), n, nil
}

// UploadSong stores the audio (and optional cover), probes the duration and indexes the song
// as owned by user. The whole cache is flushed afterwards.
func (s *Service) UploadSong(ctx context.Context, user *model.User, in NewSong) (model.Song, error) {
	if in.Audio == nil {
		return model.Song{}, model.NewError(model.ErrValidation, "没有上传音频文件")
	}

	tmpPath, size, err := spool(in.Audio)
	if err != nil {
		return model.Song{}, err
	}
	defer os.Remove(tmpPath)

	audioName := storedName(in.Audio.Filename)
	var (
		duration  int
		coverName string
	)

	// 时长解析、音频保存、封面保存并发进行
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		duration = audio.ProbeSeconds(gctx, s.prober, tmpPath)
		return nil
	})
	g.Go(func() error {
		f, err := os.Open(tmpPath)
		if err != nil {
			return fmt.Errorf("failed to reopen spooled audio: %w", err)
		}
		defer f.Close()
		if err := s.media.Save(gctx, audioName, contentType(in.Audio, audioName), f, size); err != nil {
			return fmt.Errorf("failed to store audio: %w", err)
		}
		return nil
	})
	if in.Cover != nil {
		g.Go(func() error {
			name, err := s.saveUpload(gctx, in.Cover)
			if err != nil {
				return err
			}
			coverName = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.removeMedia(context.WithoutCancel(ctx), audioName, coverName)
		return model.Song{}, err
	}

	song := model.Song{
		Title:    in.Title,
		Artist:   in.Artist,
		Album:    in.Album,
		Genre:    in.Genre,
		Duration: duration,
		Filename: audioName,
		URL:      uploadURL(audioName),
	}
	if song.Title == "" {
		song.Title = strings.TrimSuffix(in.Audio.Filename, filepath.Ext(in.Audio.Filename))
	}
	if song.Artist == "" {
		song.Artist = DefaultArtist
	}
	if song.Album == "" {
		song.Album = DefaultAlbum
	}
	if song.Genre == "" {
		song.Genre = DefaultGenre
	}
	if coverName != "" {
		song.Cover = uploadURL(coverName)
	} else {
		song.Cover = s.defaultCover()
	}
	owner := user.ID
	song.UserID = &owner

	s.mu.Lock()
	defer s.mu.Unlock()

	song = s.store.CreateSong(song)
	s.invalidateAll(ctx)

	logger.Info("上传歌曲成功",
		logger.Int64("songID", song.ID),
		logger.Int64("userID", user.ID),
		logger.String("file", audioName),
		logger.Int("duration", duration),
	)
	return song, nil
}

// ListUploadedSongs returns the songs uploaded by user.
func (s *Service) ListUploadedSongs(ctx context.Context, user *model.User) ([]model.Song, bool, error) {
	return readThrough(ctx, s, cache.UploadedKey(user.ID), func() []model.Song {
		return s.store.ListUploadedSongs(user.ID)
	})
}

// DeleteUploadedSong removes an uploaded song from the catalog and the upload index.
// A missing song is reported as Forbidden, the same as a song owned by someone else.
// Stored media is removed after the service lock is released.
func (s *Service) DeleteUploadedSong(ctx context.Context, user *model.User, id int64) error {
	song, err := s.deleteUploadedSong(ctx, user, id)
	if err != nil {
		return err
	}

	var cover string
	if strings.HasPrefix(song.Cover, uploadsPrefix) {
		cover = strings.TrimPrefix(song.Cover, uploadsPrefix)
	}
	s.removeMedia(ctx, song.Filename, cover)
	return nil
}

func (s *Service) deleteUploadedSong(ctx context.Context, user *model.User, id int64) (model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	song, err := s.store.GetUploadedSong(id)
	if err != nil || song.UserID == nil {
		return model.Song{}, model.NewError(model.ErrForbidden, "无权删除此歌曲")
	}
	if err := auth.AuthorizeOwned(user, *song.UserID, "无权删除此歌曲"); err != nil {
		return model.Song{}, err
	}
	if err := s.store.DeleteUploadedSong(id); err != nil {
		return model.Song{}, err
	}
	s.invalidateAll(ctx)
	return song, nil
}

// removeMedia deletes stored objects best-effort. Empty names are skipped.
func (s *Service) removeMedia(ctx context.Context, names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := s.media.Delete(ctx, name); err != nil {
			logger.Warn("删除媒体文件失败", logger.String("file", name), logger.ErrorField(err))
		}
	}
}
