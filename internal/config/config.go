// Package config resolves daemon and client settings from the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/namaadhu/namaadhu/common"
)

const (
	DefaultZone      = "Indian/Maldives"
	DefaultAddr      = "127.0.0.1:6640"
	DefaultDBName    = "salat.sqlite"
	DefaultMQTTTopic = "namaadhu"
	DotenvName       = ".env"
	appDirName       = "namaadhu"
)

// maldivesOffset is used when the zone database lacks Indian/Maldives.
const maldivesOffset = 5 * 60 * 60

// Config holds the resolved settings.
type Config struct {
	ConfigDir  string
	DBPath     string
	ZoneName   string
	Location   *time.Location
	Addr       string
	Secret     string
	MQTTBroker string
	MQTTTopic  string
	Debug      bool
	LogFile    string
	// Keyring keeps the generated RPC secret in the OS keyring instead of
	// the config directory.
	Keyring bool
}

// LookupFunc reads one variable; it has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the process environment, falling back to the variables of the
// .env file at dotenvPath. A missing .env file is not an error; process
// variables always win over file ones.
func Load(dotenvPath string) (*Config, error) {
	file := map[string]string{}
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("error: failed to read %s: %w", dotenvPath, err)
		}
	}
	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	})
}

// FromLookup resolves a Config from lookup.
func FromLookup(lookup LookupFunc) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	dir := get(common.ConfigDirEnv, "")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("error: cannot determine config directory: %w", err)
		}
		dir = filepath.Join(base, appDirName)
	}

	c := &Config{
		ConfigDir:  dir,
		DBPath:     get(common.DBPathEnv, filepath.Join(dir, DefaultDBName)),
		ZoneName:   get(common.ZoneEnv, DefaultZone),
		Addr:       get(common.AddrEnv, DefaultAddr),
		Secret:     get(common.RPCSecretEnv, ""),
		MQTTBroker: get(common.MQTTBrokerEnv, ""),
		MQTTTopic:  strings.TrimSuffix(get(common.MQTTTopicEnv, DefaultMQTTTopic), "/"),
		LogFile:    get(common.LogFileEnv, ""),
	}
	for env, dst := range map[string]*bool{common.DebugEnv: &c.Debug, common.KeyringEnv: &c.Keyring} {
		v := get(env, "")
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("error: invalid %s %q: %w", env, v, err)
		}
		*dst = b
	}

	loc, err := LoadZone(c.ZoneName)
	if err != nil {
		return nil, err
	}
	c.Location = loc
	return c, nil
}

// LoadZone loads an IANA zone. The default zone falls back to a fixed UTC+5
// when the system has no zone database.
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultZone {
		return time.FixedZone("MVT", maldivesOffset), nil
	}
	return nil, fmt.Errorf("error: unknown time zone %q: %w", name, err)
}

// BaseURL is the daemon's HTTP base URL as seen by local clients.
func (c *Config) BaseURL() string {
	return "http://" + c.Addr
}
