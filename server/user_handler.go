package server

import (
	"net/http"
)

// UpdateProfileRequest 更新资料请求，未提供的字段保持不变
type UpdateProfileRequest struct {
	Avatar *string `json:"avatar"`
}

// GetProfileHandler 获取当前用户资料
func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, currentUser(r).Public())
}

// UpdateProfileHandler 更新当前用户资料
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.svc.UpdateProfile(currentUser(r), req.Avatar)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, profile)
}
