package cmd

import (
	"context"
	"time"

	"github.com/namaadhu/namaadhu/internal/config"
	"github.com/namaadhu/namaadhu/pkg/nmcli"
	"github.com/spf13/afero"
)

const callTimeout = 10 * time.Second

// appFs is where the config directory lives.
var appFs = afero.NewOsFs()

// loadConfig reads the environment and ./.env.
var loadConfig = func() (*config.Config, error) {
	return config.Load(config.DotenvName)
}

// newClient connects to the daemon named by the configuration. The secret
// is shared with the daemon through the config directory.
func newClient() (*nmcli.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureSecret(appFs); err != nil {
		return nil, err
	}
	return nmcli.New(cfg.BaseURL(), cfg.Secret, nil), nil
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}
