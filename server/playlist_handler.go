package server

import (
	"net/http"
	"strings"

	"musicbox/core/library"
	"musicbox/logger"
)

// CreatePlaylistRequest 创建歌单的 JSON 请求体，带封面时使用 multipart 表单
type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListPlaylistsHandler 获取当前用户可见的歌单（自己的和公共的）
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, cached, err := h.svc.ListPlaylists(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCachedData(w, playlists, cached)
}

// GetPlaylistHandler 获取歌单详情及其歌曲
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.svc.GetPlaylist(currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, playlist)
}

// CreatePlaylistHandler 创建歌单
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var in library.NewPlaylist

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			logger.Warn("解析歌单表单失败", logger.ErrorField(err))
			writeFailure(w, http.StatusBadRequest, "请求体格式错误")
			return
		}
		defer r.MultipartForm.RemoveAll()

		in.Name = r.FormValue("name")
		in.Description = r.FormValue("description")

		cover, closeCover, err := formFile(r, "cover")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeCover()
		in.Cover = cover
	} else {
		var req CreatePlaylistRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		in.Name = req.Name
		in.Description = req.Description
	}

	playlist, err := h.svc.CreatePlaylist(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, playlist)
}

// DeletePlaylistHandler 删除歌单
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeletePlaylist(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "删除成功")
}

// AddSongToPlaylistHandler 向歌单添加歌曲，重复添加视为成功
func (h *APIHandler) AddSongToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, songID, err := playlistSongIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.AddSongToPlaylist(r.Context(), currentUser(r), playlistID, songID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "添加成功")
}

// RemoveSongFromPlaylistHandler 从歌单移除歌曲
func (h *APIHandler) RemoveSongFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, songID, err := playlistSongIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.RemoveSongFromPlaylist(r.Context(), currentUser(r), playlistID, songID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "删除成功")
}

func playlistSongIDs(r *http.Request) (int64, int64, error) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		return 0, 0, err
	}
	songID, err := pathID(r, "songId")
	if err != nil {
		return 0, 0, err
	}
	return playlistID, songID, nil
}
