package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"bizdash/internal/cache"
	"bizdash/internal/core"
	applog "bizdash/internal/log"
	"bizdash/internal/middleware/ratelimit"
	"bizdash/internal/middleware/security"
	"bizdash/internal/middleware/trace"
	"bizdash/internal/prefs"
	"bizdash/internal/source"
	appweb "bizdash/web"
)

// recordsKey is the only key of the source cache: the source has no
// server-side filtering, so one entry holds the whole collection.
const recordsKey = "expenses"

// Options configures NewServer. Source, Writer and Prefs are required.
type Options struct {
	Addr       string
	Source     source.ExpenseSource
	Writer     source.SummaryWriter
	Aggregator core.Aggregator
	Prefs      *prefs.Store
	Logger     *applog.Logger

	// SourceCacheTTL bounds how long a fetched collection is reused. Zero
	// disables storage; concurrent fetches are still collapsed.
	SourceCacheTTL time.Duration

	// RequestsPerMinute limits writes per client. Zero uses the limiter default.
	RequestsPerMinute int
	TrustedProxies    []string
}

type Server struct {
	http.Server
	templates  *template.Template
	source     source.ExpenseSource
	writer     source.SummaryWriter
	aggregator core.Aggregator
	prefs      *prefs.Store
	logger     *applog.Logger
	events     *applog.StructuredLogger

	records  *cache.LoadingCache[[]core.ExpenseRecord]
	caches   *cache.Manager
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	clientIP *security.ClientIPResolver

	unsubscribe  func()
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	store := opts.Prefs
	if store == nil {
		store = prefs.NewStore(prefs.Preferences{})
	}

	resolver := security.NewClientIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := resolver.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RequestsPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RequestsPerMinute
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		source:     opts.Source,
		writer:     opts.Writer,
		aggregator: opts.Aggregator,
		prefs:      store,
		logger:     logger,
		events:     applog.NewStructuredLogger(logger),
		records:    cache.NewLoadingCache[[]core.ExpenseRecord](1, opts.SourceCacheTTL),
		caches:     cache.NewManager(),
		limiter:    ratelimit.NewLimiter(limitCfg),
		clientIP:   resolver,
		started:    time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, resolver.ClientIP)

	s.caches.Register(s.records)
	s.caches.StartCleanup(time.Minute)

	initial := store.Get()
	updates, unsubscribe := store.Subscribe()
	s.unsubscribe = unsubscribe
	go s.watchPreferences(initial, updates)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	limited := s.limiter.Middleware(resolver.ClientIP, s.handleRateLimited)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Pages and UI partials
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /expenses", s.handleExpensesPage)
	mux.HandleFunc("GET /ui/expenses-chart", s.handleExpensesChart)
	mux.Handle("POST /ui/preferences/sidebar", limited(http.HandlerFunc(s.handleToggleSidebar)))
	mux.Handle("POST /ui/preferences/dark-mode", limited(http.HandlerFunc(s.handleToggleDarkMode)))

	// JSON API
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/by-category", s.handleExpensesByCategory)
	mux.Handle("POST /api/expenses", limited(http.HandlerFunc(s.handleCreateExpense)))
	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.Handle("PUT /api/preferences", limited(http.HandlerFunc(s.handlePutPreferences)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(headers.Middleware(mux))

	return s
}

// fetchRecords returns the full source collection, shared across concurrent
// callers and reused for SourceCacheTTL.
func (s *Server) fetchRecords(ctx context.Context) ([]core.ExpenseRecord, error) {
	return s.records.Get(ctx, recordsKey, s.source.ListExpenseSummaries)
}

// invalidateRecords forces the next fetch to hit the source.
func (s *Server) invalidateRecords() {
	s.records.Invalidate(recordsKey)
}

// watchPreferences logs every preference change, whichever route made it.
// It returns when the subscription is cancelled.
func (s *Server) watchPreferences(last prefs.Preferences, updates <-chan prefs.Preferences) {
	logger := s.logger.WithComponent(applog.ComponentPrefs)
	for p := range updates {
		if p == last {
			continue
		}
		logger.Info("Preferences changed",
			"sidebar_collapsed", p.SidebarCollapsed,
			"dark_mode", p.DarkMode)
		last = p
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		s.unsubscribe()

		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.Info("HTTP server stopped", applog.FieldOperation, applog.OpShutdown)
	})

	return shutdownErr
}
