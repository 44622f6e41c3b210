package repository

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"musicbox/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(bcrypt.MinCost)
}

func ptr(v int64) *int64 { return &v }

func TestSeededPlaylists(t *testing.T) {
	s := newTestStore(t)

	all := s.ListPlaylists(nil)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, "我喜欢的音乐", all[0].Name)
	assert.Nil(t, all[0].UserID)
	assert.Equal(t, int64(2), all[1].ID)

	created := s.CreatePlaylist(model.Playlist{Name: "Gym"})
	assert.Equal(t, int64(3), created.ID)
}

func TestRegisterValidationAndConflict(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Register("", "pw", "")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = s.Register("alice", "", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	sess, err := s.Register("  ", "pw", "")
	require.NoError(t, err, "only an empty username is rejected")
	assert.Equal(t, "  ", sess.User.Username)

	sess, err = s.Register("alice", "pw1", "a@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "alice", sess.User.Username)

	_, err = s.Register("alice", "other", "")
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestLoginRotatesToken(t *testing.T) {
	s := newTestStore(t)

	reg, err := s.Register("alice", "pw1", "")
	require.NoError(t, err)
	tokenA := reg.Token

	_, ok := s.Authenticate(tokenA)
	require.True(t, ok)

	login, err := s.Login("alice", "pw1")
	require.NoError(t, err)
	tokenB := login.Token
	assert.NotEqual(t, tokenA, tokenB)

	_, ok = s.Authenticate(tokenA)
	assert.False(t, ok, "previous token must be invalid after re-login")

	user, ok := s.Authenticate(tokenB)
	require.True(t, ok)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = s.Login("alice", "wrong")
	assert.ErrorIs(t, err, model.ErrAuth)
	_, err = s.Login("nobody", "pw1")
	assert.ErrorIs(t, err, model.ErrAuth)

	_, ok = s.Authenticate("")
	assert.False(t, ok)
	_, ok = s.Authenticate("token-unknown")
	assert.False(t, ok)
}

func TestUpdateAvatar(t *testing.T) {
	s := newTestStore(t)
	reg, err := s.Register("alice", "pw1", "")
	require.NoError(t, err)

	view, err := s.UpdateAvatar(reg.User.ID, "https://img/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img/a.png", view.Avatar)

	user, err := s.GetUserByID(reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img/a.png", user.Avatar)

	_, err = s.UpdateAvatar(99, "x")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func seedSongs(s *MemoryStore) {
	s.CreateSong(model.Song{Title: "Morning", Artist: "Ann", Album: "Days", Genre: "pop"})
	s.CreateSong(model.Song{Title: "Night Drive", Artist: "Bo", Album: "Roads", Genre: "rock"})
	s.CreateSong(model.Song{Title: "Rain", Artist: "Cy", Album: "Weather", Genre: "ambient"})
	s.CreateSong(model.Song{Title: "Sun", Artist: "Di", Album: "Weather", Genre: "folk"})
	s.CreateSong(model.Song{Title: "Blue Note", Artist: "Ed", Album: "Late", Genre: "Jazz"})
}

func TestSearchSongs(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)

	assert.Empty(t, s.SearchSongs(""))
	assert.Empty(t, s.SearchSongs("   "))

	got := s.SearchSongs("jazz")
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)

	got = s.SearchSongs("  WEATHER ")
	assert.Len(t, got, 2)

	got = s.SearchSongs("DRIVE")
	require.Len(t, got, 1)
	assert.Equal(t, "Night Drive", got[0].Title)
}

func TestListSongsLimitAndOrder(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)

	assert.Len(t, s.ListSongs(0, OrderDefault), 5)

	limited := s.ListSongs(2, OrderDefault)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(1), limited[0].ID)

	latest := s.ListSongs(2, OrderDesc)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(5), latest[0].ID)
	assert.Equal(t, int64(4), latest[1].ID)
}

func TestPlaylistMembershipScenario(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)

	gym := s.CreatePlaylist(model.Playlist{Name: "Gym", UserID: ptr(1)})

	added, err := s.AddSongToPlaylist(gym.ID, 3)
	require.NoError(t, err)
	assert.True(t, added)

	p, err := s.GetPlaylist(gym.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.SongCount)

	require.NoError(t, s.RemoveSongFromPlaylist(gym.ID, 3))
	p, _ = s.GetPlaylist(gym.ID)
	assert.Equal(t, 0, p.SongCount)

	err = s.RemoveSongFromPlaylist(gym.ID, 3)
	assert.ErrorIs(t, err, model.ErrNotFound)
	p, _ = s.GetPlaylist(gym.ID)
	assert.Equal(t, 0, p.SongCount)
}

func TestAddSongIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)

	added, err := s.AddSongToPlaylist(1, 2)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddSongToPlaylist(1, 2)
	require.NoError(t, err)
	assert.False(t, added)

	p, _ := s.GetPlaylist(1)
	assert.Equal(t, 1, p.SongCount)
	assert.Equal(t, 1, s.CountPlaylistSongs(1))

	_, err = s.AddSongToPlaylist(1, 42)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.AddSongToPlaylist(42, 1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRemoveAbsentSongLeavesCount(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)

	_, err := s.AddSongToPlaylist(1, 1)
	require.NoError(t, err)

	err = s.RemoveSongFromPlaylist(1, 2)
	assert.ErrorIs(t, err, model.ErrNotFound)

	p, _ := s.GetPlaylist(1)
	assert.Equal(t, 1, p.SongCount)
}

func TestSongCountMatchesMembershipUnderConcurrency(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			songID := int64(i%5 + 1)
			if i%3 == 0 {
				_ = s.RemoveSongFromPlaylist(1, songID)
				return
			}
			_, _ = s.AddSongToPlaylist(1, songID)
		}(i)
	}
	wg.Wait()

	p, err := s.GetPlaylist(1)
	require.NoError(t, err)
	assert.Equal(t, s.CountPlaylistSongs(1), p.SongCount)
}

func TestPlaylistExpansionDropsDanglingSongs(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)
	uploaded := s.CreateSong(model.Song{Title: "Mine", UserID: ptr(1)})

	_, err := s.AddSongToPlaylist(2, 1)
	require.NoError(t, err)
	_, err = s.AddSongToPlaylist(2, uploaded.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteUploadedSong(uploaded.ID))

	full, err := s.GetPlaylistWithSongs(2)
	require.NoError(t, err)
	require.Len(t, full.Songs, 1)
	assert.Equal(t, int64(1), full.Songs[0].ID)
	assert.Equal(t, 2, full.SongCount, "membership rows are not cascaded")

	_, err = s.GetPlaylistWithSongs(99)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeletePlaylistKeepsMemberships(t *testing.T) {
	s := newTestStore(t)
	seedSongs(s)

	p := s.CreatePlaylist(model.Playlist{Name: "Tmp", UserID: ptr(1)})
	_, err := s.AddSongToPlaylist(p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, s.DeletePlaylist(p.ID))
	assert.ErrorIs(t, s.DeletePlaylist(p.ID), model.ErrNotFound)
	assert.Equal(t, 1, s.CountPlaylistSongs(p.ID))

	next := s.CreatePlaylist(model.Playlist{Name: "Next"})
	assert.Greater(t, next.ID, p.ID, "ids are never reused")
}

func TestDeleteUploadedSongRemovesFromBothCollections(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 8; i++ {
		s.CreateSong(model.Song{Title: fmt.Sprintf("seed-%d", i)})
	}
	song := s.CreateSong(model.Song{Title: "upload", UserID: ptr(3)})
	require.Equal(t, int64(9), song.ID)

	require.Len(t, s.ListUploadedSongs(3), 1)

	require.NoError(t, s.DeleteUploadedSong(9))

	_, err := s.GetSong(9)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetUploadedSong(9)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, s.ListUploadedSongs(3))

	assert.ErrorIs(t, s.DeleteUploadedSong(9), model.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUploadedSong(1), model.ErrNotFound, "seed songs are not in the uploaded index")
}

func TestHistory(t *testing.T) {
	s := newTestStore(t)

	first := s.AddHistory(1, model.SongSnapshot{SongID: 1, SongTitle: "a"})
	second := s.AddHistory(1, model.SongSnapshot{SongID: 2, SongTitle: "b"})
	other := s.AddHistory(2, model.SongSnapshot{SongID: 3, SongTitle: "c"})

	mine := s.ListHistory(1)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, first.ID, mine[1].ID)

	got, err := s.GetHistory(other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.UserID)

	assert.Equal(t, 2, s.ClearHistory(1))
	assert.Empty(t, s.ListHistory(1))
	assert.Len(t, s.ListHistory(2), 1)

	require.NoError(t, s.DeleteHistory(other.ID))
	assert.ErrorIs(t, s.DeleteHistory(other.ID), model.ErrNotFound)
	_, err = s.GetHistory(other.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestComments(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 12; i++ {
		s.AddComment(7, fmt.Sprintf("c%d", i))
	}
	s.AddComment(8, "elsewhere")

	page1 := s.ListComments(7, 1, 10)
	assert.Len(t, page1, 10)
	page2 := s.ListComments(7, 2, 10)
	require.Len(t, page2, 2)
	assert.Equal(t, "c10", page2[0].Content)
	assert.Empty(t, s.ListComments(7, 3, 10))
	assert.Len(t, s.ListComments(7, 0, 0), 10, "defaults apply")
	assert.Empty(t, s.ListComments(7, 2305843009213693953, 4), "huge page is past the end")
	assert.Len(t, s.ListComments(7, 1, math.MaxInt), 12)
	assert.Empty(t, s.ListComments(7, 2, math.MaxInt))

	c := page1[0]
	assert.Contains(t, c.UserName, "用户")
	assert.Equal(t, commentAvatar, c.UserAvatar)

	liked, err := s.ToggleLike(c.ID)
	require.NoError(t, err)
	assert.True(t, liked.IsLiked)
	assert.Equal(t, 1, liked.LikeCount)

	unliked, err := s.ToggleLike(c.ID)
	require.NoError(t, err)
	assert.False(t, unliked.IsLiked)
	assert.Equal(t, 0, unliked.LikeCount)

	_, err = s.ToggleLike(999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
