// Package server exposes the dialogue engine over websocket and the
// storefront data over REST.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	"github.com/burgerhouse/orderchat/chat/engine"
)

type Config struct {
	Host            string        `split_words:"true" default:"0.0.0.0"`
	Port            int           `split_words:"true" default:"8080"`
	MessageTimeout  time.Duration `split_words:"true" default:"30s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	Debug           bool          `split_words:"true" default:"false"`
}

// CartMerger is the slice of the cart store the login endpoint needs.
type CartMerger interface {
	MergeAnonymous(ctx context.Context, sessionID string, customerID int64) error
}

type Deps struct {
	Engine    *engine.Engine
	Catalog   contractx.ProductCatalog
	Customers contractx.CustomerStore
	Orders    contractx.OrderStore
	Addresses contractx.AddressLookup
	Carts     CartMerger
}

type Server struct {
	cfg       Config
	engine    *engine.Engine
	catalog   contractx.ProductCatalog
	customers contractx.CustomerStore
	orders    contractx.OrderStore
	addresses contractx.AddressLookup
	carts     CartMerger

	registry       *sessionRegistry
	messageTimeout time.Duration
}

func New(cfg Config, d Deps) (*Server, error) {
	if d.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if d.Catalog == nil {
		return nil, errors.New("product catalog is required")
	}
	if d.Customers == nil {
		return nil, errors.New("customer store is required")
	}
	if d.Orders == nil {
		return nil, errors.New("order store is required")
	}
	if d.Addresses == nil {
		return nil, errors.New("address lookup is required")
	}
	if d.Carts == nil {
		return nil, errors.New("cart store is required")
	}

	timeout := cfg.MessageTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Server{
		cfg:            cfg,
		engine:         d.Engine,
		catalog:        d.Catalog,
		customers:      d.Customers,
		orders:         d.Orders,
		addresses:      d.Addresses,
		carts:          d.Carts,
		registry:       newSessionRegistry(),
		messageTimeout: timeout,
	}, nil
}

// Run serves until ctx is cancelled, then drains with a bounded shutdown.
func (s *Server) Run(ctx context.Context) error {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	s.registerRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
