package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/namaadhu/namaadhu/cmd/common"
	"github.com/urfave/cli"
)

var (
	useFixture bool
	daemonAddr string

	daemonFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "fixture",
			Usage:       "serve the built-in sample timetable instead of the database",
			Destination: &useFixture,
		},
		cli.StringFlag{
			Name:        "addr",
			Usage:       "listen address (default: NAMAADHU_ADDR or 127.0.0.1:6640)",
			Destination: &daemonAddr,
		},
	}
)

// daemonContext ends the daemon on SIGINT or SIGTERM.
var daemonContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func daemon(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadConfig()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	if daemonAddr != "" {
		cfg.Addr = daemonAddr
	}

	log := newDaemonLogger(cfg)
	defer log.Close()

	comps, err := initDaemonComponents(cfg, useFixture, log)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "init", err)
		return nil
	}
	defer comps.Close()

	runCtx, stop := daemonContext()
	defer stop()
	log.Info("daemon: starting on %s", cfg.Addr)
	err = comps.Runner.Start(runCtx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		common.PrintRuntimeErr(ctx, "daemon", "run", err)
	}
	return nil
}
