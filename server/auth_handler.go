package server

import (
	"net/http"

	"musicbox/logger"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// RegisterHandler handles user registration requests
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.svc.Register(req.Username, req.Password, req.Email)
	if err != nil {
		logger.Warn("[Register] 注册失败", logger.String("username", req.Username), logger.ErrorField(err))
		writeError(w, r, err)
		return
	}
	writeData(w, session)
}

// LoginHandler handles user login requests
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("[Login] 登录成功", logger.String("username", req.Username))
	writeData(w, session)
}
