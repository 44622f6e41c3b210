package server

import (
	"net/http"

	"musicbox/repository"
)

// AddCommentRequest 发表评论请求
type AddCommentRequest struct {
	Content string `json:"content"`
}

// ListCommentsHandler 分页获取歌曲评论
func (h *APIHandler) ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := pathID(r, "songId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := queryInt(r, "page", repository.DefaultCommentPage)
	limit := queryInt(r, "limit", repository.DefaultCommentLimit)
	writeData(w, h.svc.ListComments(songID, page, limit))
}

func (h *APIHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := pathID(r, "songId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req AddCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, h.svc.AddComment(songID, req.Content))
}

// LikeCommentHandler 切换评论的点赞状态
func (h *APIHandler) LikeCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	comment, err := h.svc.LikeComment(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, comment)
}
