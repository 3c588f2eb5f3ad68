package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/achievement"
	"github.com/rshade/footprint/internal/activitylog"
	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/factors"
	"github.com/rshade/footprint/internal/logging"
	"github.com/rshade/footprint/internal/parser/gemini"
	"github.com/rshade/footprint/internal/tracker"
)

// app holds what a command needs to run the tracker pipeline.
type app struct {
	cfg     *config.Config
	svc     *tracker.Service
	closers []func() error
}

// Close releases the database and the AI client, if any were opened.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// newApp builds the tracker service from the global configuration. The
// activity database is opened only when withStore is set.
func newApp(cmd *cobra.Command, withStore bool) (*app, error) {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()
	a := &app{cfg: cfg}

	table := factors.Default()
	if cfg.Catalogue.FactorsFile != "" {
		t, err := factors.LoadFile(cfg.Catalogue.FactorsFile)
		if err != nil {
			return nil, fmt.Errorf("loading emission factors: %w", err)
		}
		table = t
	}

	catalogue := achievement.DefaultCatalogue()
	if cfg.Catalogue.BadgesFile != "" {
		c, err := achievement.LoadCatalogue(cfg.Catalogue.BadgesFile)
		if err != nil {
			return nil, fmt.Errorf("loading badge catalogue: %w", err)
		}
		catalogue = c
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	opts := []tracker.Option{
		tracker.WithTable(table),
		tracker.WithCatalogue(catalogue),
		tracker.WithEvaluator(achievement.NewEvaluator(
			achievement.WithLocation(loc),
			achievement.WithLogger(logging.ComponentLogger(baseLogger, "achievement")),
		)),
		tracker.WithLogger(logging.ComponentLogger(baseLogger, "tracker")),
	}

	if cfg.AI.Enabled {
		apiKey := os.Getenv(cfg.AI.APIKeyEnv)
		if apiKey == "" {
			log.Warn().Ctx(ctx).Str("env", cfg.AI.APIKeyEnv).Msg("ai enabled but api key variable is empty, using rules only")
		} else {
			enh, genErr := gemini.New(ctx, apiKey, cfg.AI.Model, table)
			if genErr != nil {
				log.Warn().Ctx(ctx).Err(genErr).Msg("could not start ai enhancer, using rules only")
			} else {
				opts = append(opts, tracker.WithEnhancer(enh, cfg.AI.MinConfidence))
				a.closers = append(a.closers, enh.Close)
			}
		}
	}

	if !withStore {
		a.svc = tracker.New(nil, opts...)
		return a, nil
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Storage.Database
	}
	db, err := activitylog.Open(dbPath)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("opening activity database: %w", err)
	}
	a.closers = append(a.closers, func() error { return activitylog.Close(db) })
	log.Debug().Ctx(ctx).Str("database", dbPath).Msg("activity database opened")

	a.svc = tracker.New(activitylog.NewRepository(db), opts...)
	return a, nil
}

// requireUser returns the --user flag, falling back to FOOTPRINT_USER.
func requireUser(user string) (string, error) {
	if user == "" {
		user = os.Getenv("FOOTPRINT_USER")
	}
	if user == "" {
		return "", errors.New("a user is required: pass --user or set FOOTPRINT_USER")
	}
	return user, nil
}
