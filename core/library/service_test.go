package library

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"musicbox/cache"
	"musicbox/model"
	"musicbox/repository"
	"musicbox/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memMedia struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failOn   string
	onDelete func(name string)
}

func newMemMedia() *memMedia {
	return &memMedia{objects: make(map[string][]byte)}
}

func (m *memMedia) Save(_ context.Context, name, _ string, r io.Reader, _ int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.failOn != "" && bytes.Contains(data, []byte(m.failOn)) {
		return errors.New("disk full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	return nil
}

func (m *memMedia) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memMedia) Delete(_ context.Context, name string) error {
	if m.onDelete != nil {
		m.onDelete(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	return nil
}

func (m *memMedia) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[name]
	return ok
}

func (m *memMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type stubProber struct {
	seconds float64
	err     error
}

func (p stubProber) Duration(context.Context, string) (float64, error) {
	return p.seconds, p.err
}

type fixture struct {
	svc   *Service
	cache *cache.MemoryCache
	media *memMedia
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := cache.NewMemoryCache(time.Minute)
	media := newMemMedia()
	svc := NewService(repository.NewMemoryStore(bcrypt.MinCost), c, media, stubProber{seconds: 212.6})
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return &fixture{svc: svc, cache: c, media: media}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	session, err := f.svc.Register(name, "secret", name+"@example.com")
	require.NoError(t, err)
	user, err := f.svc.Authenticate(session.Token)
	require.NoError(t, err)
	return user
}

func (f *fixture) upload(t *testing.T, user *model.User, filename string) model.Song {
	t.Helper()
	song, err := f.svc.UploadSong(context.Background(), user, NewSong{
		Audio: &FileUpload{Filename: filename, Body: strings.NewReader("ID3 audio bytes")},
	})
	require.NoError(t, err)
	return song
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Register("alice", "pw", "")
	require.NoError(t, err)
	second, err := f.svc.Login("alice", "pw")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(first.Token)
	assert.ErrorIs(t, err, model.ErrAuth, "old token is replaced by login")
	_, err = f.svc.Authenticate("")
	assert.ErrorIs(t, err, model.ErrAuth)

	user, err := f.svc.Authenticate(second.Token)
	require.NoError(t, err)

	avatar := "https://example.com/a.png"
	profile, err := f.svc.UpdateProfile(user, &avatar)
	require.NoError(t, err)
	assert.Equal(t, avatar, profile.Avatar)
}

func TestListSongsReadThrough(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.upload(t, alice, "a.mp3")
	ctx := context.Background()

	songs, cached, err := f.svc.ListSongs(ctx, 0, "")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, songs, 1)

	songs, cached, err = f.svc.ListSongs(ctx, 0, "")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Len(t, songs, 1)

	// 上传后缓存被整体清除
	f.upload(t, alice, "b.mp3")
	songs, cached, err = f.svc.ListSongs(ctx, 0, "")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, songs, 2)
}

func TestSearchSongs(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.upload(t, alice, "Night Drive.mp3")
	f.upload(t, alice, "Morning.mp3")
	ctx := context.Background()

	songs, cached, err := f.svc.SearchSongs(ctx, "  DRIVE ")
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, songs, 1)
	assert.Equal(t, "Night Drive", songs[0].Title)

	_, cached, err = f.svc.SearchSongs(ctx, "drive")
	require.NoError(t, err)
	assert.True(t, cached, "queries are normalized before keying")

	songs, _, err = f.svc.SearchSongs(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, songs)
	assert.Equal(t, 1, f.cache.Len(), "empty query is not cached")
}

func TestPlaylistVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	mine, err := f.svc.CreatePlaylist(ctx, alice, NewPlaylist{Name: "Alice mix"})
	require.NoError(t, err)
	assert.Equal(t, "https://picsum.photos/seed/1700000000000/300/300", mine.Cover)

	lists, _, err := f.svc.ListPlaylists(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, lists, 3)

	lists, _, err = f.svc.ListPlaylists(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, lists, 2, "bob sees only the public playlists")

	_, err = f.svc.GetPlaylist(bob, mine.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.svc.GetPlaylist(bob, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeletePlaylist(ctx, bob, mine.ID), model.ErrForbidden)
	assert.ErrorIs(t, f.svc.AddSongToPlaylist(ctx, bob, mine.ID, 1), model.ErrForbidden)
	assert.ErrorIs(t, f.svc.AddSongToPlaylist(ctx, bob, 1, 999), model.ErrNotFound)

	_, err = f.svc.CreatePlaylist(ctx, alice, NewPlaylist{Name: "  "})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestPlaylistWriteInvalidatesAllUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	song := f.upload(t, alice, "a.mp3")

	_, _, err := f.svc.ListSongs(ctx, 0, "")
	require.NoError(t, err)
	_, _, err = f.svc.ListPlaylists(ctx, alice)
	require.NoError(t, err)
	_, _, err = f.svc.ListPlaylists(ctx, bob)
	require.NoError(t, err)

	// bob 修改公共歌单，alice 的歌单缓存也被清除，歌曲缓存不受影响
	require.NoError(t, f.svc.AddSongToPlaylist(ctx, bob, 1, song.ID))

	lists, cached, err := f.svc.ListPlaylists(ctx, alice)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, lists[0].SongCount)

	_, cached, err = f.svc.ListSongs(ctx, 0, "")
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestAddSongIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	song := f.upload(t, alice, "a.mp3")

	require.NoError(t, f.svc.AddSongToPlaylist(ctx, alice, 1, song.ID))
	_, _, err := f.svc.ListPlaylists(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, f.svc.AddSongToPlaylist(ctx, alice, 1, song.ID))
	lists, cached, err := f.svc.ListPlaylists(ctx, alice)
	require.NoError(t, err)
	assert.True(t, cached, "a no-op add does not invalidate")
	assert.Equal(t, 1, lists[0].SongCount)

	p, err := f.svc.GetPlaylist(alice, 1)
	require.NoError(t, err)
	require.Len(t, p.Songs, 1)
	assert.Equal(t, song.ID, p.Songs[0].ID)

	require.NoError(t, f.svc.RemoveSongFromPlaylist(ctx, alice, 1, song.ID))
	assert.ErrorIs(t, f.svc.RemoveSongFromPlaylist(ctx, alice, 1, song.ID), model.ErrNotFound)
}

func TestUploadSong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	song, err := f.svc.UploadSong(ctx, alice, NewSong{
		Audio: &FileUpload{Filename: "My Track.MP3", Body: strings.NewReader("audio")},
		Cover: &FileUpload{Filename: "cover.png", Body: strings.NewReader("png")},
		Genre: "流行",
	})
	require.NoError(t, err)

	assert.Equal(t, "My Track", song.Title)
	assert.Equal(t, DefaultArtist, song.Artist)
	assert.Equal(t, DefaultAlbum, song.Album)
	assert.Equal(t, "流行", song.Genre)
	assert.Equal(t, 213, song.Duration)
	assert.True(t, strings.HasSuffix(song.Filename, ".mp3"))
	assert.Equal(t, "/uploads/"+song.Filename, song.URL)
	assert.True(t, strings.HasPrefix(song.Cover, "/uploads/"))
	require.NotNil(t, song.UserID)
	assert.Equal(t, alice.ID, *song.UserID)
	assert.Equal(t, 2, f.media.count())

	got, rc, err := f.svc.OpenSongFile(ctx, song.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
	assert.Equal(t, song.ID, got.ID)

	_, err = f.svc.UploadSong(ctx, alice, NewSong{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestUploadSongProbeFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.prober = stubProber{err: errors.New("ffprobe not found")}
	alice := f.user(t, "alice")

	song := f.upload(t, alice, "broken.wav")
	assert.Equal(t, 0, song.Duration)
}

func TestUploadSongStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.media.failOn = "png"
	alice := f.user(t, "alice")

	_, err := f.svc.UploadSong(context.Background(), alice, NewSong{
		Audio: &FileUpload{Filename: "a.mp3", Body: strings.NewReader("audio")},
		Cover: &FileUpload{Filename: "c.png", Body: strings.NewReader("png")},
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.media.count(), "stored audio is removed when the cover fails")

	songs, _, err := f.svc.ListSongs(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Empty(t, songs)
}

func TestDeleteUploadedSong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	song := f.upload(t, alice, "a.mp3")

	uploaded, cached, err := f.svc.ListUploadedSongs(ctx, alice)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, uploaded, 1)

	assert.ErrorIs(t, f.svc.DeleteUploadedSong(ctx, bob, song.ID), model.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteUploadedSong(ctx, alice, 999), model.ErrForbidden)

	require.NoError(t, f.svc.DeleteUploadedSong(ctx, alice, song.ID))
	assert.False(t, f.media.has(song.Filename))

	uploaded, cached, err = f.svc.ListUploadedSongs(ctx, alice)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Empty(t, uploaded)

	_, err = f.svc.GetSong(song.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, _, err = f.svc.OpenSongFile(ctx, song.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteUploadedSongReleasesLockBeforeMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	song := f.upload(t, alice, "a.mp3")

	var deleted []string
	var lockFree []bool
	f.media.onDelete = func(name string) {
		deleted = append(deleted, name)
		free := f.svc.mu.TryLock()
		if free {
			f.svc.mu.Unlock()
		}
		lockFree = append(lockFree, free)
	}

	require.NoError(t, f.svc.DeleteUploadedSong(ctx, alice, song.ID))
	assert.Equal(t, []string{song.Filename}, deleted)
	assert.Equal(t, []bool{true}, lockFree)
}

func TestHistoryOwnership(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	entry := f.svc.AddHistory(alice, model.SongSnapshot{SongID: 1, SongTitle: "t"})
	f.svc.AddHistory(bob, model.SongSnapshot{SongID: 2})

	assert.ErrorIs(t, f.svc.DeleteHistory(bob, entry.ID), model.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteHistory(bob, 999), model.ErrNotFound)
	require.NoError(t, f.svc.DeleteHistory(alice, entry.ID))

	f.svc.AddHistory(alice, model.SongSnapshot{SongID: 3})
	assert.Equal(t, 1, f.svc.ClearHistory(alice))
	assert.Empty(t, f.svc.ListHistory(alice))
	assert.Len(t, f.svc.ListHistory(bob), 1)
}

func TestComments(t *testing.T) {
	f := newFixture(t)

	c := f.svc.AddComment(7, "好听")
	liked, err := f.svc.LikeComment(c.ID)
	require.NoError(t, err)
	assert.True(t, liked.IsLiked)
	assert.Equal(t, 1, liked.LikeCount)

	assert.Len(t, f.svc.ListComments(7, 0, 0), 1)
	_, err = f.svc.LikeComment(999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// 并发写入与缓存读取交错后，最终读到的必须是最新状态
func TestConcurrentWritesNeverLeaveStaleCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreatePlaylist(ctx, alice, NewPlaylist{Name: "mix"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, _, err := f.svc.ListPlaylists(ctx, alice)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lists, _, err := f.svc.ListPlaylists(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, lists, 2+writers)
}

func TestCacheHealthMemory(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.CacheHealth(context.Background()))
}
