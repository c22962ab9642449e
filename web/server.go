package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"stocksim/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "quote", "quoted", "buy", "bought", "sell", "sold",
	"history", "login", "register", "apology",
}

// Server is the browser-facing front end. It holds no business state of its
// own; every request is delegated to the service layer.
type Server struct {
	auth       service.AuthService
	portfolios service.PortfolioService
	trading    service.TradingService
	quotes     service.QuoteService
	sessions   *sessionManager
	templates  map[string]*template.Template
	httpServer *http.Server
	log        *logrus.Entry
}

func NewServer(addr, sessionSecret string, auth service.AuthService, portfolios service.PortfolioService, trading service.TradingService, quotes service.QuoteService) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		auth:       auth,
		portfolios: portfolios,
		trading:    trading,
		quotes:     quotes,
		sessions:   newSessionManager(sessionSecret),
		templates:  templates,
		log:        logrus.WithField("component", "web"),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{"usd": usd}
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.requireLogin(s.handleIndex))
	mux.HandleFunc("/quote", s.requireLogin(s.handleQuote))
	mux.HandleFunc("/buy", s.requireLogin(s.handleBuy))
	mux.HandleFunc("/sell", s.requireLogin(s.handleSell))
	mux.HandleFunc("/history", s.requireLogin(s.handleHistory))
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/register", s.handleRegister)

	return noCache(mux)
}

// noCache keeps the browser from serving a cached portfolio after a trade
// or a signed-in page after logout.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Expires", "0")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

// requireLogin redirects anonymous requests to the login page and passes the
// resolved user id to the wrapped handler.
func (s *Server) requireLogin(next func(w http.ResponseWriter, r *http.Request, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := s.sessions.userID(r)
		if userID == 0 {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

type pageData struct {
	SignedIn  bool
	Portfolio interface{}
	History   interface{}
	Quote     interface{}
	Receipt   interface{}
	Symbols   []string
	Message   string
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := s.templates[page]
	if !ok {
		s.log.WithField("page", page).Error("Unknown template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.log.WithError(err).WithField("page", page).Error("Failed to render template")
	}
}
