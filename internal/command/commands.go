package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formaction/internal/server"
	"github.com/goliatone/go-formaction/internal/view"
	"github.com/goliatone/go-formaction/pkg/action"
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/prompt"
	"github.com/goliatone/go-formaction/pkg/schema"
)

// ErrSubmissionFailed is returned when a terminal form ends in a fail state.
var ErrSubmissionFailed = errors.New("submission failed")

func (a *App) serveCommand() *cli.Command {
	flags := append(runtimeFlags(),
		&cli.StringFlag{
			Name:  "addr",
			Usage: "listen address, overrides the configuration",
		},
		&cli.StringFlag{
			Name:  "templates",
			Usage: "directory whose templates replace the embedded ones",
		},
	)
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the login and admin forms over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := a.bootstrap(ctx, cmd)
			if err != nil {
				return err
			}

			var viewOpts []view.Option
			if dir := strings.TrimSpace(cmd.String("templates")); dir != "" {
				viewOpts = append(viewOpts, view.WithBaseDir(dir))
			}
			engine, err := view.New(viewOpts...)
			if err != nil {
				return err
			}

			handler, err := server.NewHandler(server.Deps{
				Config:       rt.cfg,
				Actions:      rt.actions,
				Store:        rt.store,
				Cache:        rt.cache,
				View:         engine,
				Translations: rt.tr,
				Logger:       rt.logger.New("module", "server"),
			})
			if err != nil {
				return err
			}

			addr := rt.cfg.Addr
			if override := strings.TrimSpace(cmd.String("addr")); override != "" {
				addr = override
			}
			rt.logger.Info("listening", "addr", addr, "lang", rt.tr.Language())
			return a.Serve(ctx, addr, handler)
		},
	}
}

func (a *App) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in as an administrator from the terminal",
		Flags: append(runtimeFlags(), attemptsFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := a.bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			return a.runSession(ctx, rt.tr.GetMessage("login_title", 0, nil), rt.actions.Login, rt.actions.Login.Schema(), int(cmd.Int("attempts")))
		},
	}
}

func (a *App) createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "create an administrator from the terminal",
		Flags: append(runtimeFlags(), attemptsFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := a.bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			return a.runSession(ctx, rt.tr.GetMessage("admins_title", 0, nil), rt.actions.Create, rt.actions.Create.Schema(), int(cmd.Int("attempts")))
		},
	}
}

func attemptsFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "attempts",
		Value: 3,
		Usage: "number of submissions before giving up",
	}
}

func (a *App) runSession(ctx context.Context, title string, handler action.Handler, s *schema.Schema, attempts int) error {
	driver := a.driver()
	if err := driver.Info(ctx, title); err != nil {
		return err
	}

	state, err := prompt.Session{
		Driver:   driver,
		Handler:  handler,
		Schema:   s,
		Out:      a.Out,
		Attempts: attempts,
	}.Run(ctx)
	if err != nil {
		return err
	}
	if state.Tag() != formstate.TagSuccess {
		return ErrSubmissionFailed
	}
	return nil
}

func (a *App) schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "work with form schema documents",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "parse schema documents and report every problem",
				ArgsUsage: "<file or url>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "operation",
						Usage: "treat the documents as OpenAPI and build the schema of this operation",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return a.checkSchemas(ctx, cmd.Args().Slice(), cmd.String("operation"))
				},
			},
		},
	}
}

func (a *App) checkSchemas(ctx context.Context, args []string, operationID string) error {
	if len(args) == 0 {
		return errors.New("schema check: at least one file or url is required")
	}

	failed := 0
	for _, arg := range args {
		s, err := loadSchema(ctx, arg, operationID)
		if err != nil {
			failed++
			fmt.Fprintf(a.Out, "FAIL %s: %v\n", arg, err)
			continue
		}
		fmt.Fprintf(a.Out, "ok   %s: %s (%d fields)\n", arg, s.Name, len(s.Fields))
	}
	if failed > 0 {
		return fmt.Errorf("schema check: %d of %d documents invalid", failed, len(args))
	}
	return nil
}

func loadSchema(ctx context.Context, arg, operationID string) (*schema.Schema, error) {
	src, err := schema.ParseSource(arg)
	if err != nil {
		return nil, err
	}
	doc, err := schema.Read(ctx, src, nil, nil)
	if err != nil {
		return nil, err
	}
	if op := strings.TrimSpace(operationID); op != "" {
		return doc.Operation(ctx, op)
	}
	return doc.Schema()
}
