package server

import (
	"errors"
	"net/http"

	"musicbox/core/library"
	"musicbox/logger"
)

const (
	maxUploadSize   = 50 << 20 // 50MB
	multipartMemory = 10 << 20
)

// formFile 读取可选的上传文件，字段不存在时返回 nil
func formFile(r *http.Request, field string) (*library.FileUpload, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &library.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}

// UploadSongHandler 上传歌曲
// multipart 表单字段:
// - audio: 音频文件（必填）
// - cover: 封面图片（可选）
// - title, artist, album, genre: 元数据（可选）
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		logger.Warn("解析上传表单失败", logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, "没有上传音频文件")
		return
	}
	defer r.MultipartForm.RemoveAll()

	audioFile, closeAudio, err := formFile(r, "audio")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeAudio()

	coverFile, closeCover, err := formFile(r, "cover")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeCover()

	song, err := h.svc.UploadSong(r.Context(), currentUser(r), library.NewSong{
		Title:  r.FormValue("title"),
		Artist: r.FormValue("artist"),
		Album:  r.FormValue("album"),
		Genre:  r.FormValue("genre"),
		Audio:  audioFile,
		Cover:  coverFile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, song)
}

// ListUploadedSongsHandler 获取当前用户上传的歌曲
func (h *APIHandler) ListUploadedSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, cached, err := h.svc.ListUploadedSongs(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCachedData(w, songs, cached)
}

// DeleteUploadedSongHandler 删除自己上传的歌曲
func (h *APIHandler) DeleteUploadedSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteUploadedSong(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "删除成功")
}
