// Package config loads typed configuration sections from the process
// environment, optionally seeded from a dotenv file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	dotenvFlag string
	flagOnce   sync.Once
)

// MustNew is New but panics on failure. Intended for process startup,
// where a missing required variable should abort immediately.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New populates a T from environment variables under the given prefix.
// If the -env flag names a dotenv file it is exported into the
// environment first; otherwise a ./.env file is used when present.
func New[T any](prefix string) (*T, error) {
	if path := dotenvPath(); path != "" {
		if err := exportDotenv(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else if err := exportDotenvIfExists(".env"); err != nil {
		return nil, fmt.Errorf("load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func dotenvPath() string {
	flagOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&dotenvFlag, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(dotenvFlag)
}

func exportDotenvIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportDotenv(path)
}

// exportDotenv copies every key from the dotenv file into the process
// environment so envconfig sees file values and real environment
// variables uniformly.
func exportDotenv(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, val := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(key), fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
