package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musicbox/cache"
	"musicbox/config"
	"musicbox/core/audio"
	"musicbox/core/library"
	"musicbox/logger"
	"musicbox/repository"
	"musicbox/storage"

	"github.com/gorilla/mux"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	svc *library.Service
	cfg *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(svc *library.Service, cfg *config.Config) *APIHandler {
	return &APIHandler{svc: svc, cfg: cfg}
}

// NewRouter registers every route and wraps the router with CORS and request logging.
func NewRouter(h *APIHandler) http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	// 健康检查
	api.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	api.HandleFunc("/health/db", h.DBHealthHandler).Methods(http.MethodGet)
	api.HandleFunc("/health/redis", h.RedisHealthHandler).Methods(http.MethodGet)

	// 用户
	api.HandleFunc("/users/register", h.RegisterHandler).Methods(http.MethodPost)
	api.HandleFunc("/users/login", h.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/users/profile", h.AuthMiddleware(h.GetProfileHandler)).Methods(http.MethodGet)
	api.HandleFunc("/users/profile", h.AuthMiddleware(h.UpdateProfileHandler)).Methods(http.MethodPut)

	// 歌曲
	api.HandleFunc("/songs", h.ListSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/search", h.SearchSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id:[0-9]+}", h.GetSongHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id:[0-9]+}/download", h.DownloadSongHandler).Methods(http.MethodGet)

	// 歌单
	api.HandleFunc("/playlists", h.AuthMiddleware(h.ListPlaylistsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{playlistId:[0-9]+}/songs/{songId:[0-9]+}", h.AuthMiddleware(h.AddSongToPlaylistHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{playlistId:[0-9]+}/songs/{songId:[0-9]+}", h.AuthMiddleware(h.RemoveSongFromPlaylistHandler)).Methods(http.MethodDelete)

	// 播放历史
	api.HandleFunc("/history", h.AuthMiddleware(h.ListHistoryHandler)).Methods(http.MethodGet)
	api.HandleFunc("/history", h.AuthMiddleware(h.AddHistoryHandler)).Methods(http.MethodPost)
	api.HandleFunc("/history", h.AuthMiddleware(h.ClearHistoryHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/history/{id:[0-9]+}", h.AuthMiddleware(h.DeleteHistoryHandler)).Methods(http.MethodDelete)

	// 播放器
	api.HandleFunc("/player/play", h.PlayHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/pause", h.PauseHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/queue", h.QueueHandler).Methods(http.MethodGet)
	api.HandleFunc("/player/queue/add", h.AddToQueueHandler).Methods(http.MethodPost)

	// 评论
	api.HandleFunc("/comments/songs/{songId:[0-9]+}", h.ListCommentsHandler).Methods(http.MethodGet)
	api.HandleFunc("/comments/songs/{songId:[0-9]+}", h.AddCommentHandler).Methods(http.MethodPost)
	api.HandleFunc("/comments/{commentId:[0-9]+}/like", h.LikeCommentHandler).Methods(http.MethodPost)

	// 上传
	api.HandleFunc("/upload/song", h.AuthMiddleware(h.UploadSongHandler)).Methods(http.MethodPost)
	api.HandleFunc("/upload/songs", h.AuthMiddleware(h.ListUploadedSongsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/upload/song/{id:[0-9]+}", h.AuthMiddleware(h.DeleteUploadedSongHandler)).Methods(http.MethodDelete)

	// 上传文件的静态访问
	router.HandleFunc("/uploads/{name}", h.UploadsHandler).Methods(http.MethodGet, http.MethodHead)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "接口不存在")
	})

	// CORS 包在路由外层，预检请求不需要匹配具体路由
	return corsMiddleware(loggingMiddleware(router))
}

// buildService 根据配置选择缓存和媒体存储后端，返回的 cleanup 用于释放连接
func buildService(ctx context.Context, cfg *config.Config) (*library.Service, func(), error) {
	cleanup := func() {}

	var c cache.Cache
	if cfg.UseRedisCache() {
		client, err := cache.ConnectRedis(cfg)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := client.Close(); err != nil {
				logger.Warn("关闭Redis连接失败", logger.ErrorField(err))
			}
		}
		c = cache.NewRedisCache(client, "", cfg.CacheTTL)
		logger.Info("使用Redis缓存", logger.String("addr", cfg.RedisHost+":"+cfg.RedisPort))
	} else {
		mc := cache.NewMemoryCache(cfg.CacheTTL)
		mc.StartSweeper(ctx, cfg.CacheSweepInterval)
		c = mc
		logger.Info("使用内存缓存", logger.Duration("ttl", cfg.CacheTTL))
	}

	var media storage.MediaStore
	if cfg.UseMinio() {
		ms, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		media = ms
		logger.Info("使用MinIO存储上传文件", logger.String("bucket", ms.Bucket()))
	} else {
		ls, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		media = ls
		logger.Info("使用本地目录存储上传文件", logger.String("dir", cfg.UploadDir))
	}

	store := repository.NewMemoryStore(cfg.PasswordCost)
	svc := library.NewService(store, c, media, audio.NewFFprobe(cfg.FFmpegPath))
	return svc, cleanup, nil
}

// Start initializes and starts the HTTP server. It blocks until SIGINT/SIGTERM.
func Start(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer cleanup()

	// 设置服务器超时
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewRouter(NewAPIHandler(svc, cfg)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务器启动", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待中断信号
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("服务器已停止")
	return nil
}
