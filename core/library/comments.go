package library

import (
	"musicbox/model"
)

// ListComments pages through the comments of a song. Non-positive page or limit use the defaults.
func (s *Service) ListComments(songID int64, page, limit int) []model.Comment {
	return s.store.ListComments(songID, page, limit)
}

func (s *Service) AddComment(songID int64, content string) model.Comment {
	return s.store.AddComment(songID, content)
}

// LikeComment toggles the like flag of a comment.
func (s *Service) LikeComment(id int64) (model.Comment, error) {
	return s.store.ToggleLike(id)
}
