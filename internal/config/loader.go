// package config loads keystat settings from defaults, an optional YAML
// file, KEYSTAT_ environment variables and bound command line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Keys understood by Load.
const (
	KeyScanRoot       = "scan.root"
	KeyScanWorkers    = "scan.workers"
	KeyScanIgnoreFile = "scan.ignore_file"
	KeyLogLevel       = "log.level"
	KeyReportRelease  = "report.release"
)

// EnvPrefix prefixes environment overrides, e.g. KEYSTAT_SCAN_WORKERS.
const EnvPrefix = "KEYSTAT"

// Config is the resolved configuration.
type Config struct {
	Root       string
	Workers    int
	IgnoreFile string
	LogLevel   log.Level
	Release    bool
}

// Load reads configuration into v. cfgFile, if not empty, names the file to
// read; otherwise keystat.yaml is searched in the working directory and in
// $HOME/.keystat. A missing file is not an error.
func Load(v *viper.Viper, cfgFile string) error {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".keystat"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("keystat")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config")
		}
		log.Debug("no config file found, using defaults and environment")
	} else {
		log.WithField("file", v.ConfigFileUsed()).Debug("using config file")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyScanRoot, ".")
	v.SetDefault(KeyScanWorkers, runtime.GOMAXPROCS(0))
	v.SetDefault(KeyScanIgnoreFile, ".bzrignore")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyReportRelease, false)
}

// Resolve reads the typed configuration out of v.
func Resolve(v *viper.Viper) (Config, error) {
	level, err := log.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", KeyLogLevel)
	}

	workers := v.GetInt(KeyScanWorkers)
	if workers < 1 {
		return Config{}, errors.Errorf("config %s: %d is not positive", KeyScanWorkers, workers)
	}

	return Config{
		Root:       v.GetString(KeyScanRoot),
		Workers:    workers,
		IgnoreFile: v.GetString(KeyScanIgnoreFile),
		LogLevel:   level,
		Release:    v.GetBool(KeyReportRelease),
	}, nil
}
