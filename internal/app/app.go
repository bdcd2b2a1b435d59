// Package app wires configuration, the durable slot and the shop services together.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Makepad-fr/bookshop/internal/auth"
	"github.com/Makepad-fr/bookshop/internal/cart"
	"github.com/Makepad-fr/bookshop/internal/catalog"
	"github.com/Makepad-fr/bookshop/internal/checkout"
	"github.com/Makepad-fr/bookshop/internal/config"
	"github.com/Makepad-fr/bookshop/internal/store"
	"github.com/Makepad-fr/bookshop/internal/store/jsonstore"
	"github.com/Makepad-fr/bookshop/internal/store/redisstore"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Shop bundles everything a command needs.
type Shop struct {
	Config   *config.Config
	Logger   *slog.Logger
	Slot     store.Slot
	Catalog  *catalog.Catalog
	Cart     *cart.Store
	Auth     *auth.Service
	Checkout *checkout.Service

	closer io.Closer
}

// OpenSlot builds the durable slot named by cfg.Backend.
func OpenSlot(ctx context.Context, cfg *config.Config) (store.Slot, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendFile:
		s, err := jsonstore.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s := redisstore.New(client, cfg.Redis.Prefix)
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.Ping(pctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendMemory:
		return store.NewMemory(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// Open opens the slot and loads catalog, cart and auth from it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Shop, error) {
	if logger == nil {
		logger = slog.Default()
	}
	slot, closer, err := OpenSlot(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s slot: %w", cfg.Backend, err)
	}
	return New(ctx, cfg, slot, closer, logger)
}

// New builds a Shop on an already opened slot. closer may be nil.
func New(ctx context.Context, cfg *config.Config, slot store.Slot, closer io.Closer, logger *slog.Logger) (*Shop, error) {
	policy, err := checkout.ParsePolicy(cfg.Checkout.Policy)
	if err != nil {
		return nil, err
	}
	c := cart.Open(ctx, slot, logger.With("component", "cart"))
	return &Shop{
		Config:   cfg,
		Logger:   logger,
		Slot:     slot,
		Catalog:  catalog.Open(ctx, slot, logger.With("component", "catalog")),
		Cart:     c,
		Auth:     auth.NewService(slot, auth.Options{Logger: logger.With("component", "auth")}),
		Checkout: checkout.NewService(c, policy, logger.With("component", "checkout")),
		closer:   closer,
	}, nil
}

// Close releases the slot connection, if any.
func (s *Shop) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
