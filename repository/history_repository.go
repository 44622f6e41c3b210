package repository

import (
	"musicbox/model"

	"github.com/samber/lo"
)

// HistoryRepository defines play history operations. Every entry has an owner.
type HistoryRepository interface {
	ListHistory(userID int64) []model.HistoryEntry
	AddHistory(userID int64, snap model.SongSnapshot) model.HistoryEntry
	GetHistory(id int64) (model.HistoryEntry, error)
	DeleteHistory(id int64) error
	ClearHistory(userID int64) int
}

// ListHistory returns the user's entries, newest first.
func (s *MemoryStore) ListHistory(userID int64) []model.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.HistoryEntry, 0)
	for _, h := range s.history {
		if h.UserID == userID {
			result = append(result, *h)
		}
	}
	return result
}

// AddHistory 将新记录插入到最前面
func (s *MemoryStore) AddHistory(userID int64, snap model.SongSnapshot) model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &model.HistoryEntry{
		ID:         next(&s.seq.history),
		SongID:     snap.SongID,
		SongTitle:  snap.SongTitle,
		SongArtist: snap.SongArtist,
		SongCover:  snap.SongCover,
		UserID:     userID,
		PlayedAt:   s.now(),
	}
	s.history = append([]*model.HistoryEntry{entry}, s.history...)
	return *entry
}

// GetHistory 根据ID获取播放记录
func (s *MemoryStore) GetHistory(id int64) (model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := lo.Find(s.history, func(h *model.HistoryEntry) bool { return h.ID == id })
	if !ok {
		return model.HistoryEntry{}, model.NewError(model.ErrNotFound, "记录不存在")
	}
	return *h, nil
}

// DeleteHistory 删除单条播放记录
func (s *MemoryStore) DeleteHistory(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, h := range s.history {
		if h.ID == id {
			s.history = append(s.history[:i], s.history[i+1:]...)
			return nil
		}
	}
	return model.NewError(model.ErrNotFound, "记录不存在")
}

// ClearHistory removes every entry of the user and leaves other users untouched. It returns the number removed.
func (s *MemoryStore) ClearHistory(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := lo.Filter(s.history, func(h *model.HistoryEntry, _ int) bool { return h.UserID != userID })
	removed := len(s.history) - len(kept)
	s.history = kept
	return removed
}
