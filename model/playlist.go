package model

import "time"

// Playlist 表示一个歌单。UserID 为 nil 时是所有人可见、可修改的公共歌单。
// SongCount 是冗余字段，必须与该歌单的 PlaylistSong 行数一致。
type Playlist struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	SongCount   int        `json:"song_count"`
	Cover       string     `json:"cover,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UserID      *int64     `json:"user_id"`
}

// PlaylistSong 歌单-歌曲关联
type PlaylistSong struct {
	ID         int64 `json:"id"`
	PlaylistID int64 `json:"playlist_id"`
	SongID     int64 `json:"song_id"`
}

// PlaylistWithSongs 包含歌单信息和其包含的歌曲
type PlaylistWithSongs struct {
	Playlist
	Songs []Song `json:"songs"`
}
