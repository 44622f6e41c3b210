package server

import (
	"net/http"

	"musicbox/model"
)

func (h *APIHandler) ListHistoryHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.svc.ListHistory(currentUser(r)))
}

// AddHistoryHandler 记录一次播放，歌曲信息以快照形式保存
func (h *APIHandler) AddHistoryHandler(w http.ResponseWriter, r *http.Request) {
	var snap model.SongSnapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, h.svc.AddHistory(currentUser(r), snap))
}

func (h *APIHandler) DeleteHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteHistory(currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "删除成功")
}

// ClearHistoryHandler 只清空当前用户的播放历史
func (h *APIHandler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearHistory(currentUser(r))
	writeMessage(w, "清空成功")
}
