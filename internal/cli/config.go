package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoUser is returned when a command needs a user and none is known
var ErrNoUser = errors.New("no user: pass --user or run 'rqctl user connect' first")

// Config holds CLI configuration
type Config struct {
	ServerURL string
	UserID    string
	UserFile  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("RQCTL_SERVER", "http://localhost:8080"),
		UserID:    os.Getenv("RQCTL_USER"),
		UserFile:  getEnvOrDefault("RQCTL_USER_FILE", defaultUserFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadUser loads the user id from file if not already set
func (c *Config) LoadUser() error {
	if c.UserID != "" {
		return nil
	}

	data, err := os.ReadFile(c.UserFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No user file is fine
		}
		return err
	}

	c.UserID = strings.TrimSpace(string(data))
	return nil
}

// SaveUser saves the user id to the user file
func (c *Config) SaveUser(id string) error {
	c.UserID = id

	dir := filepath.Dir(c.UserFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.UserFile, []byte(id), 0600)
}

// RequireUser returns the current user id or ErrNoUser
func (c *Config) RequireUser() (string, error) {
	if c.UserID == "" {
		return "", ErrNoUser
	}
	return c.UserID, nil
}

func defaultUserFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rqctl/user"
	}
	return filepath.Join(home, ".rqctl", "user")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
