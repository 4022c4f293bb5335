package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formaction/internal/admin"
	"github.com/goliatone/go-formaction/internal/config"
	"github.com/goliatone/go-formaction/internal/i18n"
	"github.com/goliatone/go-formaction/pkg/prompt"
	"github.com/goliatone/go-formaction/pkg/tagcache"
)

const shutdownTimeout = 5 * time.Second

// App holds the IO and collaborators shared by every command. The zero value
// is not usable; call New.
type App struct {
	Out io.Writer
	Err io.Writer
	// Driver answers terminal prompts. Nil means survey on stdin.
	Driver prompt.PromptDriver
	// Serve runs the HTTP server until ctx is done.
	Serve func(ctx context.Context, addr string, h http.Handler) error
	// StoreOptions configure the admin store built for each run.
	StoreOptions []admin.StoreOption
}

// New returns an App wired to the process stdio.
func New() *App {
	return &App{
		Out:   os.Stdout,
		Err:   os.Stderr,
		Serve: ListenAndServe,
	}
}

// Command builds the root command.
func (a *App) Command() *cli.Command {
	return &cli.Command{
		Name:  "formaction",
		Usage: "serve and drive form actions",
		Commands: []*cli.Command{
			a.serveCommand(),
			a.loginCommand(),
			a.createAdminCommand(),
			a.schemaCommand(),
		},
	}
}

// runtimeFlags are accepted by every command that builds the admin actions.
func runtimeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a TOML configuration file",
		},
		&cli.StringFlag{
			Name:  "lang",
			Usage: "message language (en, es)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log level (debug, info, warn, error, crit)",
		},
		&cli.StringSliceFlag{
			Name:  "admin",
			Usage: "seed an administrator as username:password",
		},
	}
}

type runtime struct {
	cfg     *config.Config
	logger  log15.Logger
	tr      *i18n.Translations
	store   *admin.MemoryStore
	cache   *tagcache.Cache
	actions *admin.Actions
}

func (a *App) bootstrap(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lang := strings.TrimSpace(cmd.String("lang")); lang != "" {
		cfg.Language = lang
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := a.newLogger(cmd.String("log-level"))
	if err != nil {
		return nil, err
	}

	tr, err := i18n.NewTranslations(cfg.Language)
	if err != nil {
		return nil, err
	}
	schemas, err := admin.Schemas(cfg.SchemaDir)
	if err != nil {
		return nil, err
	}

	store := admin.NewMemoryStore(a.StoreOptions...)
	if err := seedAdmins(ctx, store, cmd.StringSlice("admin")); err != nil {
		return nil, err
	}

	cache := tagcache.New(tagcache.WithLogger(logger))
	actions, err := admin.NewActions(admin.Deps{
		Store:        store,
		Schemas:      schemas,
		Invalidator:  cache,
		Tags:         cfg.Tags,
		Translations: tr,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		tr:      tr,
		store:   store,
		cache:   cache,
		actions: actions,
	}, nil
}

func (a *App) newLogger(level string) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	handler := log15.LvlFilterHandler(lvl, log15.StreamHandler(a.Err, log15.LogfmtFormat()))
	log15.Root().SetHandler(handler)

	logger := log15.New("module", "formaction")
	logger.SetHandler(handler)
	return logger, nil
}

func seedAdmins(ctx context.Context, store *admin.MemoryStore, specs []string) error {
	for _, spec := range specs {
		username, password, ok := strings.Cut(spec, ":")
		if !ok || strings.TrimSpace(username) == "" || password == "" {
			return fmt.Errorf("invalid --admin %q, want username:password", spec)
		}
		if _, err := store.Create(ctx, admin.NewAdmin{Username: username, Password: password}); err != nil {
			return fmt.Errorf("seed admin %s: %w", username, err)
		}
	}
	return nil
}

func (a *App) driver() prompt.PromptDriver {
	if a.Driver != nil {
		return a.Driver
	}
	return prompt.NewSurveyDriver()
}

// ListenAndServe serves h on addr and shuts down gracefully once ctx is done.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
