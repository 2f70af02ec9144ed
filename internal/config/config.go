package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"courtside/internal/rating"
)

type Config struct {
	// SQLDSN is the path of the sqlite database holding the club data.
	SQLDSN string

	// Volatility solver policy, zero values fall back to the engine
	// defaults. Only useful to exercise non-convergent edge cases.
	GlickoTau           float64
	GlickoMaxIterations int
	GlickoEpsilon       float64
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"COURTSIDE_SQL_DSN", &c.SQLDSN},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	if c.SQLDSN == "" {
		c.SQLDSN = "./courtside.db"
	}
}

// RatingParameters returns the configured solver policy, falling back
// to the engine defaults field by field.
func (c *Config) RatingParameters() rating.Parameters {
	p := rating.DefaultParameters()

	if c.GlickoTau > 0 {
		p.Tau = c.GlickoTau
	}
	if c.GlickoMaxIterations > 0 {
		p.MaxIterations = c.GlickoMaxIterations
	}
	if c.GlickoEpsilon > 0 {
		p.Epsilon = c.GlickoEpsilon
	}

	return p
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = Config{}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "courtside")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o700)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
