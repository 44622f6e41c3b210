package repository

import (
	"fmt"
	"math/rand"

	"musicbox/model"

	"github.com/samber/lo"
)

const (
	DefaultCommentPage  = 1
	DefaultCommentLimit = 10

	commentAvatar = "👤"
)

// CommentRepository defines song comment operations.
type CommentRepository interface {
	ListComments(songID int64, page, limit int) []model.Comment
	AddComment(songID int64, content string) model.Comment
	ToggleLike(commentID int64) (model.Comment, error)
}

// ListComments returns one page of a song's comments in posting order.
func (s *MemoryStore) ListComments(songID int64, page, limit int) []model.Comment {
	if page < 1 {
		page = DefaultCommentPage
	}
	if limit < 1 {
		limit = DefaultCommentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := lo.Filter(s.comments, func(c *model.Comment, _ int) bool { return c.SongID == songID })
	// 先按页数比较，避免 (page-1)*limit 溢出
	pages := len(all) / limit
	if len(all)%limit != 0 {
		pages++
	}
	if page-1 >= pages {
		return []model.Comment{}
	}
	start := (page - 1) * limit
	end := min(start+limit, len(all))
	return lo.Map(all[start:end], func(c *model.Comment, _ int) model.Comment { return *c })
}

// AddComment 添加评论，作者名随机生成
func (s *MemoryStore) AddComment(songID int64, content string) model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &model.Comment{
		ID:         next(&s.seq.comment),
		SongID:     songID,
		UserName:   fmt.Sprintf("用户%d", rand.Intn(1000)),
		UserAvatar: commentAvatar,
		Content:    content,
		CreatedAt:  s.now(),
	}
	s.comments = append(s.comments, c)
	return *c
}

// ToggleLike 切换点赞状态并同步调整点赞数
func (s *MemoryStore) ToggleLike(commentID int64) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := lo.Find(s.comments, func(c *model.Comment) bool { return c.ID == commentID })
	if !ok {
		return model.Comment{}, model.NewError(model.ErrNotFound, "评论不存在")
	}
	c.IsLiked = !c.IsLiked
	if c.IsLiked {
		c.LikeCount++
	} else {
		c.LikeCount--
	}
	return *c, nil
}
