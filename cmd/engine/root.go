package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"outreach-engine/internal/config"
	"outreach-engine/internal/llm"
	"outreach-engine/internal/retry"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/store"
)

var dataDirFlag string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "engine",
		Short:         "Lead pipeline engine: discovers, qualifies and works outreach leads",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default $OUTREACH_DATA_DIR or .)")

	root.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newHarvestCmd(),
		newQualifyCmd(),
		newFollowupsCmd(),
		newLeadsCmd(),
		newKeywordsCmd(),
		newRepliesCmd(),
		newStatsCmd(),
		newSecretsCmd(),
	)
	return root
}

// app holds everything a command needs after bootstrap.
type app struct {
	cfg    config.Config
	db     *store.DB
	policy retry.Policy
	lock   *flock.Flock
}

func dataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	if d := os.Getenv("OUTREACH_DATA_DIR"); d != "" {
		return d
	}
	return "."
}

// openApp bootstraps config, store and the single-instance lock.
// Overlapping invocations of mutating commands are refused up front;
// the store-level conditional writes are the backstop, not the plan.
func openApp(withLock bool) (*app, error) {
	dir := dataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cfgPath, err := config.EnsureUserConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load (%s): %w", cfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Printf("[config] error: %s", e)
		}
		return nil, fmt.Errorf("invalid config at %s", cfgPath)
	}

	var lock *flock.Flock
	if withLock {
		lock = flock.New(filepath.Join(dir, "engine.lock"))
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another engine instance holds %s", lock.Path())
		}
	}

	db, err := store.Open(filepath.Join(dir, "outreach.db"))
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, err
	}

	return &app{
		cfg: cfg,
		db:  db,
		policy: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Retry.BaseDelayMillis) * time.Millisecond,
			MaxDelay:    time.Duration(cfg.Retry.MaxDelayMillis) * time.Millisecond,
			Cooldown:    time.Duration(cfg.Retry.CooldownSeconds) * time.Second,
		},
		lock: lock,
	}, nil
}

func (a *app) close() {
	_ = a.db.Close()
	if a.lock != nil {
		_ = a.lock.Unlock()
	}
}

// buildLLM constructs the Gemini client for commands that evaluate or
// generate keywords.
func (a *app) buildLLM(ctx context.Context) (*llm.Client, error) {
	key, err := secrets.GeminiAPIKey(a.cfg.Evaluator.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(ctx, key, a.cfg.Evaluator.Model)
}
