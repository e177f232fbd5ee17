package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"timerito/internal/cache"
	"timerito/internal/core"
	applog "timerito/internal/log"
	"timerito/internal/middleware/trace"
	"timerito/internal/store"
	appweb "timerito/web"
)

type Server struct {
	http.Server
	templates *template.Template

	writer  store.TaskWriter
	updater store.TaskUpdater
	deleter store.TaskDeleter
	clearer store.TaskClearer
	lister  store.TaskLister
	budget  store.BudgetStore
	drafts  store.DraftStore

	rateLimiter *rateLimiter
	secMetrics  *securityMetrics

	// Cached task list and summary, invalidated on every mutation
	tasksCache   *cache.LRUCache[[]core.Task]
	summaryCache *cache.LRUCache[[]core.TaskSummaryItem]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Backend is the full set of storage operations the server needs.
type Backend interface {
	store.TaskWriter
	store.TaskUpdater
	store.TaskDeleter
	store.TaskClearer
	store.TaskLister
	store.BudgetStore
	store.DraftStore
}

const (
	tasksCacheKey   = "tasks"
	summaryCacheKey = "summary"
)

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, backend Backend) *Server {
	mux := http.NewServeMux()

	s := &Server{
		writer:  backend,
		updater: backend,
		deleter: backend,
		clearer: backend,
		lister:  backend,
		budget:  backend,
		drafts:  backend,

		rateLimiter:  newRateLimiter(),
		secMetrics:   &securityMetrics{},
		tasksCache:   cache.NewLRUCache[[]core.Task](10, 5*time.Minute),
		summaryCache: cache.NewLRUCache[[]core.TaskSummaryItem](10, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.tasksCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/tasks", s.withSecurityHeaders(s.handleCreateTask))
	mux.HandleFunc("/tasks/update", s.withSecurityHeaders(s.handleUpdateTask))
	mux.HandleFunc("/tasks/delete", s.withSecurityHeaders(s.handleDeleteTask))
	mux.HandleFunc("/tasks/clear", s.withSecurityHeaders(s.handleClearTasks))
	mux.HandleFunc("/budget", s.withSecurityHeaders(s.handleSetBudget))
	mux.HandleFunc("/draft", s.withSecurityHeaders(s.handleSaveDraft))
	// UI partials
	mux.HandleFunc("/ui/task-list", s.withSecurityHeaders(s.handleTaskList))
	mux.HandleFunc("/ui/summary", s.withSecurityHeaders(s.handleSummary))

	// Request tracing wraps the whole mux, with a component-scoped
	// logger available in every request context
	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	tracer := trace.NewMiddleware(extractClientIP)
	s.Server = http.Server{
		Addr:    addr,
		Handler: tracer.Middleware(applog.Middleware(httpLogger)(mux)),
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, suspicious request
// detection, and rate limiting on mutations.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.secMetrics) {
			slog.WarnContext(r.Context(), "Suspicious request blocked",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		// Rate limit mutations only, reads stay cheap
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.secMetrics) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) invalidateCaches() {
	s.tasksCache.Delete(tasksCacheKey)
	s.summaryCache.Delete(summaryCacheKey)
}

func (s *Server) getTasks(ctx context.Context) ([]core.Task, error) {
	if items, found := s.tasksCache.Get(tasksCacheKey); found {
		slog.DebugContext(ctx, "Task list cache hit", "count", len(items))
		// Return a copy to prevent external mutation
		result := make([]core.Task, len(items))
		copy(result, items)
		return result, nil
	}

	// Small timeout so partials never hang on a slow backend
	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	items, err := s.lister.ListTasks(cctx)
	if err != nil {
		return nil, err
	}

	s.tasksCache.Set(tasksCacheKey, items)
	slog.DebugContext(ctx, "Task list cached", "count", len(items))
	return items, nil
}

func (s *Server) getSummary(ctx context.Context) ([]core.TaskSummaryItem, []core.Task, error) {
	tasks, err := s.getTasks(ctx)
	if err != nil {
		return nil, nil, err
	}

	if items, found := s.summaryCache.Get(summaryCacheKey); found {
		slog.DebugContext(ctx, "Summary cache hit", "groups", len(items))
		return items, tasks, nil
	}

	items := core.GroupByName(tasks)
	s.summaryCache.Set(summaryCacheKey, items)
	return items, tasks, nil
}
