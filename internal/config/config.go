package config

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type Config struct {
	// Listen is the host:port the HTTP API binds to.
	Listen string

	// Domain is the public hostname, used when building absolute URLs
	// (eg. the signed check-in links embedded in player QR codes).
	Domain string

	// DevMode relaxes anything that gets in the way of local development.
	DevMode bool

	// RefereeTokens are the bearer tokens accepted on referee-only
	// endpoints. One token per tablet so a leaked token can be revoked
	// without rotating every device.
	RefereeTokens []string

	SQLDriver, SQLDSN string

	// WebToken is the HMAC key used to sign URLs.
	WebToken string
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
		{"CROSSPOINTX_LISTEN", &c.Listen},
		{"CROSSPOINTX_DOMAIN", &c.Domain},
		{"CROSSPOINTX_SQL_DSN", &c.SQLDSN},
		{"CROSSPOINTX_WEB_TOKEN", &c.WebToken},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	if str := os.Getenv("CROSSPOINTX_REFEREE_TOKEN"); str != "" {
		c.RefereeTokens = append(c.RefereeTokens, str)
	}
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:3001"
	}
	if c.SQLDriver == "" {
		c.SQLDriver = "sqlite3"
	}
	if c.SQLDSN == "" {
		c.SQLDSN = "./crosspointx.db"
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer func() {
		c.expandFromEnv()
		c.applyDefaults()
	}()

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

// IsRefereeToken returns true if the given bearer token grants access to the
// referee endpoints.
func (c *Config) IsRefereeToken(token string) bool {
	if token == "" {
		return false
	}

	for _, v := range c.RefereeTokens {
		if subtle.ConstantTimeCompare([]byte(v), []byte(token)) == 1 {
			return true
		}
	}

	return false
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "crosspointx")
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
