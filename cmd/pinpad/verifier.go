package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/config"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/database"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/logging"
	"github.com/nerrad567/graylogic-pinpad/internal/nvstore"
	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// buildVerifier returns the configured verifier. In hashed mode the
// reference word is written to the NV store when it is missing or stale.
func buildVerifier(ctx context.Context, cfg *config.Config, db *database.DB, clock clockwork.Clock, log *logging.Logger) (pinauth.Verifier, error) {
	if cfg.Auth.Verification == "plaintext" {
		log.Warn("plaintext verification enabled; the NV store is not used")
		v, err := pinauth.NewPlainVerifier(cfg.Auth.DefaultPIN)
		if err != nil {
			return nil, fmt.Errorf("creating verifier: %w", err)
		}
		return v, nil
	}

	nv, err := openWordStore(cfg.NVStore, db, clock)
	if err != nil {
		return nil, err
	}

	store, err := pinauth.NewHashStore(nv, cfg.Auth.DefaultPIN)
	if err != nil {
		return nil, fmt.Errorf("creating hash store: %w", err)
	}

	written, err := store.InitializeIfNeeded(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising PIN hash: %w", err)
	}
	if written {
		log.Info("reference PIN hash written",
			"backend", cfg.NVStore.Backend,
			"address", fmt.Sprintf("%#04x", cfg.NVStore.Address),
		)
	}

	return store, nil
}

// openWordStore opens the NV word selected by nc.
func openWordStore(nc config.NVStoreConfig, db *database.DB, clock clockwork.Clock) (pinauth.WordStore, error) {
	if nc.Backend == "sqlite" {
		return nvstore.NewSQLiteStore(db, nc.Address, clock), nil
	}

	if nc.Path == "" {
		return nvstore.NewEEPROM(nc.Size).Word(nc.Address), nil
	}

	img, err := nvstore.OpenEEPROM(nc.Path, nc.Size)
	if err != nil {
		return nil, fmt.Errorf("opening EEPROM image: %w", err)
	}
	return img.Word(nc.Address), nil
}
