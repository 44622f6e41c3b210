package auth

import (
	"musicbox/model"
)

// 歌单采用“无主即公共”规则：UserID 为空时任何已登录用户都可读写；
// 播放历史和上传歌曲总是有主，必须严格匹配，没有公共豁免。

// CanAccessPlaylist reports whether principal may read or modify the playlist.
func CanAccessPlaylist(principal *model.User, p *model.Playlist) bool {
	if p.UserID == nil {
		return true
	}
	return principal != nil && *p.UserID == principal.ID
}

// AuthorizePlaylist returns a ForbiddenError unless principal may modify the playlist.
func AuthorizePlaylist(principal *model.User, p *model.Playlist, message string) error {
	if !CanAccessPlaylist(principal, p) {
		return model.NewError(model.ErrForbidden, message)
	}
	return nil
}

// AuthorizeOwned checks personal data (history entries, uploaded songs) which always has an owner.
func AuthorizeOwned(principal *model.User, ownerID int64, message string) error {
	if principal == nil || principal.ID != ownerID {
		return model.NewError(model.ErrForbidden, message)
	}
	return nil
}
