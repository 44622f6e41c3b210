package server

import (
	"io"
	"mime"
	"net/http"

	"musicbox/logger"
	"musicbox/storage"
)

// ListSongsHandler 获取歌曲列表，支持 limit 和 order 参数
func (h *APIHandler) ListSongsHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	order := r.URL.Query().Get("order")

	songs, cached, err := h.svc.ListSongs(r.Context(), limit, order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCachedData(w, songs, cached)
}

// SearchSongsHandler 按关键词搜索歌曲
func (h *APIHandler) SearchSongsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	songs, cached, err := h.svc.SearchSongs(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Debug("搜索歌曲", logger.String("q", q), logger.Int("count", len(songs)), logger.Bool("cached", cached))
	writeCachedData(w, songs, cached)
}

// GetSongHandler 获取单首歌曲
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, err := h.svc.GetSong(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, song)
}

// DownloadSongHandler 以附件形式下载歌曲音频
func (h *APIHandler) DownloadSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, rc, err := h.svc.OpenSongFile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(song.Filename))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": song.Title + ".mp3",
	}))
	if _, err := io.Copy(w, rc); err != nil {
		logger.Error("下载歌曲失败", logger.Int64("songID", id), logger.ErrorField(err))
	}
}

// 播放器接口只做确认，播放状态由客户端维护

func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "播放成功")
}

func (h *APIHandler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "暂停成功")
}

// QueueHandler 返回播放队列（全部歌曲）
func (h *APIHandler) QueueHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.svc.Queue())
}

func (h *APIHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "添加到播放队列成功")
}
