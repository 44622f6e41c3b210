package model

import "time"

// Comment 歌曲评论，作者名随机生成，与用户身份无关
type Comment struct {
	ID         int64     `json:"id"`
	SongID     int64     `json:"song_id"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar"`
	Content    string    `json:"content"`
	LikeCount  int       `json:"like_count"`
	IsLiked    bool      `json:"is_liked"`
	CreatedAt  time.Time `json:"created_at"`
}
