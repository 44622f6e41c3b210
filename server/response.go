package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"musicbox/logger"
	"musicbox/model"

	"github.com/gorilla/mux"
)

// response 统一的响应格式
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Cached  *bool       `json:"cached,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("写入响应失败", logger.ErrorField(err))
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

// writeCachedData 返回数据并标明是否来自缓存
func writeCachedData(w http.ResponseWriter, data interface{}, cached bool) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data, Cached: &cached})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, response{Success: true, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Message: message})
}

// statusFor 将错误分类映射为HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError 写入错误响应，未知错误记录日志并返回通用消息
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("处理请求失败",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.ErrorField(err))
		writeFailure(w, status, "服务器内部错误")
		return
	}
	writeFailure(w, status, model.Message(err, http.StatusText(status)))
}

// pathID 解析路由中的数字ID
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, model.NewError(model.ErrValidation, "无效的ID")
	}
	return id, nil
}

// queryInt 读取查询参数中的整数，缺省或非法时返回 fallback
func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewError(model.ErrValidation, "请求体格式错误")
	}
	return nil
}
