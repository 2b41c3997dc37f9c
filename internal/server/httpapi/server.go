// Package httpapi exposes the auth endpoints as a JSON API on gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/devconnector/internal/logging"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (services.RegisterResult, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID string) (models.PublicUser, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Server struct {
	address string
	users   UserService
	tokens  TokenVerifier
	logger  logging.Logger
	origins []string
	engine  *gin.Engine
}

func NewServer(addr string, l logging.Logger, us UserService, tv TokenVerifier, corsOrigins []string) *Server {
	registerValidations()

	s := &Server{
		address: addr,
		users:   us,
		tokens:  tv,
		logger:  l.With("module", "http_server"),
		origins: corsOrigins,
	}
	s.engine = s.newRouter()
	return s
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
