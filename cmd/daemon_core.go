package cmd

import (
	"os"

	"github.com/namaadhu/namaadhu/internal/config"
	daemonpkg "github.com/namaadhu/namaadhu/internal/daemon"
	"github.com/namaadhu/namaadhu/internal/prefs"
	"github.com/namaadhu/namaadhu/internal/publish"
	"github.com/namaadhu/namaadhu/internal/server"
	"github.com/namaadhu/namaadhu/internal/store"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

// DaemonComponents holds everything the daemon command starts, so it can be
// released in one place.
type DaemonComponents struct {
	Store     store.Store
	Prefs     *prefs.Prefs
	Publisher *publish.Publisher
	Runner    *daemonpkg.Runner
	log       logger.Logger
}

// Close releases the components in reverse order of initialization.
func (c *DaemonComponents) Close() {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.log.Warning("daemon: failed to close store: %v", err)
		}
	}
	c.log.Info("daemon: stopped")
}

// openStore opens the timetable database, or the built-in fixture.
func openStore(cfg *config.Config, fixture bool) (store.Store, error) {
	if fixture {
		return store.Fixture(), nil
	}
	return store.OpenSQLite(cfg.DBPath)
}

// initDaemonComponents wires the daemon from cfg. A broker that cannot be
// reached disables publishing instead of failing the daemon.
var initDaemonComponents = func(cfg *config.Config, fixture bool, log logger.Logger) (*DaemonComponents, error) {
	if err := cfg.EnsureSecret(appFs); err != nil {
		return nil, err
	}
	st, err := openStore(cfg, fixture)
	if err != nil {
		log.Error("daemon: failed to open %s: %v", cfg.DBPath, err)
		return nil, err
	}
	if fixture {
		log.Warning("daemon: serving the built-in sample timetable")
	}

	c := &DaemonComponents{
		Store: st,
		Prefs: prefs.New(appFs, cfg.ConfigDir, log),
		log:   log,
	}

	if cfg.MQTTBroker != "" {
		pub := publish.New(publish.NewClient(cfg.MQTTBroker, log), cfg.MQTTTopic, log)
		if err := pub.Connect(); err != nil {
			log.Warning("daemon: mqtt disabled: %v", err)
		} else {
			c.Publisher = pub
		}
	}

	c.Runner = daemonpkg.New(&daemonpkg.Config{
		Addr: cfg.Addr,
		RPC: server.RPCConfig{
			Secret:    cfg.Secret,
			Version:   buildArgs.Version,
			Commit:    buildArgs.Commit,
			BuildType: buildArgs.BuildType,
		},
	}, &daemonpkg.Dependencies{
		Store:     st,
		Selection: c.Prefs,
		Location:  cfg.Location,
		Log:       log,
		Publisher: c.Publisher,
	})
	return c, nil
}

// newDaemonLogger logs JSON records to stderr, or human readable lines in
// debug mode. With a log file configured, JSON records are also appended
// there; a file that cannot be opened is reported and skipped.
var newDaemonLogger = func(cfg *config.Config) logger.Logger {
	stderr := logger.New(logger.Options{Out: os.Stderr, Console: cfg.Debug, Component: "daemon"})
	if cfg.LogFile == "" {
		return stderr
	}
	f, err := appFs.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		stderr.Warning("daemon: cannot open log file %s: %v", cfg.LogFile, err)
		return stderr
	}
	return logger.NewMultiLogger(stderr, logger.New(logger.Options{Out: f, Component: "daemon"}))
}
