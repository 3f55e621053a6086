// Package web serves the local browser UI. Pages are rendered on the server
// from the same session store and services the terminal client uses, so a
// login in one surface is visible in the other.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/marquee-dev/marquee/internal/app"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Server represents the local web UI server
type Server struct {
	router *gin.Engine
	app    *app.App
	logger zerolog.Logger
	addr   string
}

// New creates a new server for a.
func New(a *app.App) (*Server, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		app:    a,
		logger: a.Logger,
		addr:   a.Config.Web.Addr,
	}
	s.setupRouter(tmpl)
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter(tmpl *template.Template) {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(SameOrigin(s.app.Config.Web.AllowOrigins, s.logger))

	// Public pages
	s.router.GET("/", s.home)
	s.router.GET("/search", s.search)
	s.router.GET("/movies/:id", s.movieDetails)
	s.router.GET("/login", s.loginPage)
	s.router.POST("/login", s.login)
	s.router.GET("/register", s.registerPage)
	s.router.POST("/register", s.register)
	s.router.GET("/reset-password", s.resetPasswordPage)
	s.router.POST("/reset-password", s.resetPassword)
	s.router.POST("/logout", s.logout)

	// Session snapshot for scripts and other local tools
	api := s.router.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     s.app.Config.Web.AllowOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	{
		api.GET("/session", s.sessionSnapshot)
		api.OPTIONS("/session", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	// Pages that need a session
	member := s.router.Group("")
	member.Use(RequireSession(s.app.Authz, s.logger))
	{
		member.GET("/profile", s.profile)
		member.POST("/profile", s.updateProfile)
		member.GET("/favorites", s.favorites)
		member.POST("/favorites/:id", s.addFavorite)
		member.POST("/favorites/:id/remove", s.removeFavorite)
		member.GET("/watchlist", s.watchlist)
		member.POST("/watchlist/:id", s.addToWatchlist)
		member.POST("/watchlist/:id/remove", s.removeFromWatchlist)
		member.GET("/liked", s.liked)
		member.POST("/movies/:id/reviews", s.postReview)
		member.POST("/reviews/:id/like", s.likeReview)
		member.POST("/reviews/:id/unlike", s.unlikeReview)
	}

	// Admin pages
	admin := s.router.Group("/admin")
	admin.Use(RequireAdmin(s.app.Authz, s.logger))
	{
		admin.GET("/flags", s.flags)
		admin.POST("/flags/:id/:action", s.flagAction)
		admin.GET("/users", s.users)
		admin.POST("/users/:id/:action", s.userAction)
	}

	s.router.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, errors.New("page not found"))
	})
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("HTTP request")
	}
}

// Listen binds the configured address. Split from Serve so callers can learn
// the real address before serving.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return ln, nil
}

// Serve handles requests on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting web UI")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down web UI...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	s.logger.Info().Msg("Web UI stopped")
	return nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
