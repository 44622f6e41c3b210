package library

import (
	"musicbox/core/auth"
	"musicbox/model"
)

func (s *Service) ListHistory(user *model.User) []model.HistoryEntry {
	return s.store.ListHistory(user.ID)
}

func (s *Service) AddHistory(user *model.User, snap model.SongSnapshot) model.HistoryEntry {
	return s.store.AddHistory(user.ID, snap)
}

// DeleteHistory removes one entry owned by the user.
func (s *Service) DeleteHistory(user *model.User, id int64) error {
	entry, err := s.store.GetHistory(id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeOwned(user, entry.UserID, "无权删除此记录"); err != nil {
		return err
	}
	return s.store.DeleteHistory(id)
}

// ClearHistory removes all entries of the user and leaves other users untouched.
func (s *Service) ClearHistory(user *model.User) int {
	return s.store.ClearHistory(user.ID)
}
