package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxLogBodyBytes 单条日志请求体上限
const maxLogBodyBytes = 1 << 20

// Server 日志中转 HTTP 服务
type Server struct {
	indexer        Indexer
	metrics        *RequestMetrics
	allowList      *IPAllowList
	staticDir      string
	trustProxy     bool
	forwardTimeout time.Duration
	logger         *log.Logger
}

// NewServer 创建中转服务
// logger 为 nil 时输出到 stdout
func NewServer(cfg *Config, indexer Indexer, allowList *IPAllowList, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stdout, "[Relay] ", log.LstdFlags)
	}
	return &Server{
		indexer:        indexer,
		metrics:        NewRequestMetrics(),
		allowList:      allowList,
		staticDir:      cfg.StaticDir,
		trustProxy:     cfg.TrustProxy,
		forwardTimeout: time.Duration(cfg.ForwardTimeoutSeconds * float64(time.Second)),
		logger:         logger,
	}
}

// Routes 构建路由
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// RealIP 会用请求头改写 RemoteAddr，/metrics 白名单依赖对端地址
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/api/status", s.handleStatus)
	r.Post("/api/log-game-start", s.handleLog(GameStartIndex))
	r.Post("/api/log-game-data", s.handleLog(GameDataIndex))

	r.With(s.allowList.Middleware(s.logger.Printf)).Get("/metrics", s.metrics.Handler(s.logger).ServeHTTP)

	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}

	return r
}

// requestLogger 记录请求与响应状态
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Printf("method=%s path=%s status=%d duration=%v request_id=%s remote_addr=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()), r.RemoteAddr)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "API is working!"})
}

// handleLog 将请求体原样写入指定索引
func (s *Server) handleLog(index string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLogBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		if !json.Valid(body) {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.forwardTimeout)
		defer cancel()

		if err := s.indexer.Index(ctx, index, body); err != nil {
			s.logger.Printf("Failed to save log to %s: %v", index, err)
			http.Error(w, "Error saving log", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "Log saved")
	}
}

// ListenAndServe 启动服务，ctx 取消时优雅关闭
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Server is running at http://localhost%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Printf("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
