// Package httpapi exposes the e-book workflows and account endpoints as a
// JSON HTTP API built on echo.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/services"
)

// EbookService is the subset of services.EbookService used by the handlers.
type EbookService interface {
	BeginUpload(ctx context.Context, ownerID string, req services.BeginUploadRequest) (*services.UploadTicket, error)
	CompleteUpload(ctx context.Context, ownerID, objectPath string) (*services.CompletedUpload, error)
	CreateViewURL(ctx context.Context, ownerID, objectPath string) (*services.ViewURL, error)
	ListReady(ctx context.Context, ownerID string) ([]*models.Ebook, error)
}

// UserService is the subset of services.UserService used by the handlers.
type UserService interface {
	Register(ctx context.Context, email, password string, role models.Role) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type Options struct {
	Address         string
	SecretKey       string
	ShutdownTimeout time.Duration
	Ebooks          EbookService
	Users           UserService
	Logger          logging.Logger
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	app             *echo.Echo
	ebooks          EbookService
	users           UserService
	logger          logging.Logger
	jwtSecret       []byte
}

func NewServer(opts Options) *Server {
	s := &Server{
		address:         opts.Address,
		shutdownTimeout: opts.ShutdownTimeout,
		app:             echo.New(),
		ebooks:          opts.Ebooks,
		users:           opts.Users,
		logger:          opts.Logger.With("module", "http_server"),
		jwtSecret:       []byte(opts.SecretKey),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Validator = newValidator()
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.logger)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	s.app.Use(s.requestLogger)
	s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{DisableStackAll: true}))

	s.app.GET("/health", s.health)

	authGroup := s.app.Group("/api/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)

	pdf := s.app.Group("/api/pdf", s.requireAccessToken)
	pdf.POST("/uploads/sign", s.signUpload)
	pdf.POST("/uploads/complete", s.completeUpload)
	pdf.POST("/view-url", s.viewURL)
	pdf.GET("/list", s.list)
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
