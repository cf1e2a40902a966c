package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/strollerlabs/stroller-truth/internal/engine"
	"github.com/strollerlabs/stroller-truth/internal/ingest"
	"github.com/strollerlabs/stroller-truth/internal/policy"
	"github.com/strollerlabs/stroller-truth/internal/store"
)

// env bundles the wired components shared by all commands.
type env struct {
	Rules    policy.Rules
	Mem      *store.Memory
	Persist  store.Persistence
	Ingestor *ingest.Ingestor
	Eval     *engine.Evaluator
}

// initEnv wires rules, persistence, the in-memory store, and the evaluator,
// then restores the latest persisted snapshot when one exists.
func initEnv(ctx context.Context) (*env, error) {
	rules := policy.DefaultRules()
	if cfg.Policy.RulesPath != "" {
		r, err := policy.LoadRules(cfg.Policy.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = r
	}

	var persist store.Persistence
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		persist = s
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		persist = s
	case "none", "":
		// in-memory only
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if persist != nil {
		if err := persist.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	mem := store.NewMemory()
	ing := ingest.New(mem, persist)
	if _, err := ing.Restore(ctx); err != nil {
		return nil, err
	}

	return &env{
		Rules:    rules,
		Mem:      mem,
		Persist:  persist,
		Ingestor: ing,
		Eval:     engine.New(rules),
	}, nil
}

// ensureData loads the configured dataset when the store is still empty, so
// read commands work without an explicit ingest step.
func (e *env) ensureData(ctx context.Context) error {
	if e.Mem.Snapshot().Len() > 0 {
		return nil
	}
	if _, err := os.Stat(cfg.Dataset.Path); err != nil {
		return eris.Wrapf(err, "no snapshot loaded and dataset %s unavailable", cfg.Dataset.Path)
	}
	_, err := e.Ingestor.LoadFile(ctx, cfg.Dataset.Path)
	return err
}

func (e *env) Close() {
	if e.Persist != nil {
		if err := e.Persist.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}
