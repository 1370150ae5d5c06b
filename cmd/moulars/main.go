package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/zrax/moulars/internal/config"
	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/server"
)

var log = logging.Logger("main")

func main() {
	app := &cli.App{
		Name:  "moulars",
		Usage: "MOULArs-compatible Myst Online: Uru Live Again server",
		Commands: []*cli.Command{
			serveCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("%+v", err)
		os.Exit(1)
	}
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Run the server until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"MOULARS_CONFIG"},
			Value:   "moulars.toml",
			Usage:   "Path to the TOML configuration file",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := config.Load(cctx.String("config"))
		if err != nil {
			return err
		}
		logctx.SetLevel(cfg.LogLevel)

		srv, err := server.New(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe(ctx)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			log.Info("shutdown signal received")
			srv.Shutdown(server.DefaultShutdownGrace)
			return nil
		}
	},
}
