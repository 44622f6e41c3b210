package model

// Song represents an audio track in the library.
// UserID is nil for seeded/system songs and set for user uploads.
type Song struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Genre    string `json:"genre"`
	Cover    string `json:"cover"`
	Duration int    `json:"duration"` // seconds
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
	UserID   *int64 `json:"user_id"`
}

// OwnedBy reports whether the song was uploaded by the given user.
func (s *Song) OwnedBy(userID int64) bool {
	return s.UserID != nil && *s.UserID == userID
}
