package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".postboard_token"
)

// ErrNotLoggedIn is returned when no token has been stored.
var ErrNotLoggedIn = errors.New("not logged in: run `postboard login` first")

// APIURL returns the base URL for the postboard API.
// It can be overridden with the POSTBOARD_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("POSTBOARD_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is where the access token is kept, in the user's home directory.
func TokenPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, tokenFileName)
}

// SaveToken writes the token readable by the current user only.
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// DeleteToken removes the stored token. It reports false when there was none.
func DeleteToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
