package model

import "time"

// HistoryEntry 播放历史。歌曲字段是写入时的快照，不随歌曲变化。
type HistoryEntry struct {
	ID         int64     `json:"id"`
	SongID     int64     `json:"song_id"`
	SongTitle  string    `json:"song_title"`
	SongArtist string    `json:"song_artist"`
	SongCover  string    `json:"song_cover"`
	UserID     int64     `json:"user_id"`
	PlayedAt   time.Time `json:"played_at"`
}

// SongSnapshot 是添加播放历史时客户端提交的歌曲信息
type SongSnapshot struct {
	SongID     int64  `json:"song_id"`
	SongTitle  string `json:"song_title"`
	SongArtist string `json:"song_artist"`
	SongCover  string `json:"song_cover"`
}
