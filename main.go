package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/burgerhouse/orderchat/chat/assistant"
	contractx "github.com/burgerhouse/orderchat/chat/contract"
	"github.com/burgerhouse/orderchat/chat/engine"
	statex "github.com/burgerhouse/orderchat/chat/state"
	configx "github.com/burgerhouse/orderchat/pkg/config"
	_ "github.com/burgerhouse/orderchat/pkg/logger/autoload"
	viacepx "github.com/burgerhouse/orderchat/pkg/viacep"
	"github.com/burgerhouse/orderchat/server"
	"github.com/burgerhouse/orderchat/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeCfg := configx.MustNew[store.Config]("DB")
	db, err := store.Connect(ctx, *storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := store.CreateSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	viacepCfg := configx.MustNew[viacepx.Config]("VIACEP")
	addresses := viacepx.MustNew(*viacepCfg)

	// The AI collaborator is optional: without credentials the engine runs
	// on the deterministic resolver alone.
	var responder contractx.Responder
	if aiCfg, err := configx.New[assistant.Config]("AI"); err != nil {
		log.Warn().Err(err).Msg("assistant disabled")
	} else if a, err := assistant.New(*aiCfg); err != nil {
		log.Warn().Err(err).Msg("assistant disabled")
	} else {
		responder = a
	}

	eng, err := engine.New(engine.Deps{
		Sessions:      statex.NewMemoryStore(),
		Conversations: store.NewConversations(db),
		Messages:      store.NewMessages(db),
		Pending:       store.NewPendingOrders(db),
		Customers:     store.NewCustomers(db),
		Orders:        store.NewOrders(db),
		Catalog:       store.NewProducts(db),
		Responder:     responder,
		Addresses:     addresses,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}

	serverCfg := configx.MustNew[server.Config]("SERVER")
	srv, err := server.New(*serverCfg, server.Deps{
		Engine:    eng,
		Catalog:   store.NewProducts(db),
		Customers: store.NewCustomers(db),
		Orders:    store.NewOrders(db),
		Addresses: addresses,
		Carts:     store.NewCarts(db),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
}
