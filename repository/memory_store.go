package repository

import (
	"sync"
	"time"

	"musicbox/model"
)

// MemoryStore 是进程内的实体存储，进程重启后所有数据丢失。
// 所有集合共用一把读写锁：删除上传歌曲需要同时修改 songs 和 uploaded，
// 读取歌单详情需要同时读取 playlistSongs 和 songs，必须看到一致的视图。
type MemoryStore struct {
	mu sync.RWMutex

	users  []*model.User
	tokens map[string]int64 // token -> user id

	songs    []*model.Song
	uploaded []*model.Song // 与 songs 共享同一批指针

	playlists     []*model.Playlist
	playlistSongs []model.PlaylistSong

	history  []*model.HistoryEntry // 最新的在前
	comments []*model.Comment

	seq sequences

	passwordCost int
	now          func() time.Time
}

// sequences 为每个集合分配单调递增的ID，删除后不复用
type sequences struct {
	user, song, playlist, playlistSong, history, comment int64
}

func next(counter *int64) int64 {
	*counter++
	return *counter
}

var (
	_ UserRepository     = (*MemoryStore)(nil)
	_ SongRepository     = (*MemoryStore)(nil)
	_ PlaylistRepository = (*MemoryStore)(nil)
	_ HistoryRepository  = (*MemoryStore)(nil)
	_ CommentRepository  = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store seeded with the two public playlists.
func NewMemoryStore(passwordCost int) *MemoryStore {
	s := &MemoryStore{
		tokens:       make(map[string]int64),
		passwordCost: passwordCost,
		now:          time.Now,
	}
	s.seed()
	return s
}

func (s *MemoryStore) seed() {
	for _, p := range []model.Playlist{
		{Name: "我喜欢的音乐", Description: "收藏喜欢的歌曲"},
		{Name: "工作背景音乐", Description: "适合工作时听的音乐"},
	} {
		p := p
		p.ID = next(&s.seq.playlist)
		s.playlists = append(s.playlists, &p)
	}
}
