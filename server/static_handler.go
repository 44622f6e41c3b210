package server

import (
	"io"
	"net/http"

	"musicbox/logger"
	"musicbox/storage"

	"github.com/gorilla/mux"
)

// UploadsHandler 从媒体存储读取上传的文件
func (h *APIHandler) UploadsHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rc, err := h.svc.OpenMedia(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(name))
	w.Header().Set("Cache-Control", "public, max-age=31536000") // 缓存一年

	if _, err := io.Copy(w, rc); err != nil {
		logger.Error("Error serving uploaded file", logger.String("name", name), logger.ErrorField(err))
	}
}
