package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName     = "meetplan"
	configFile        = "config.yaml"
	credentialsFile   = "credentials.json"
	tokenFile         = "token.json"
	configDirPermMode = 0o700

	// ConfigDirEnv overrides the configuration directory.
	ConfigDirEnv = "MEETPLAN_CONFIG_DIR"
)

// GetConfigDir returns the configuration directory path (~/.config/meetplan)
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName), nil
}

func pathInConfigDir(name string) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, name), nil
}

// GetConfigPath returns the path to the YAML configuration file
func GetConfigPath() (string, error) {
	return pathInConfigDir(configFile)
}

// GetCredentialsPath returns the path to the Google credentials file
func GetCredentialsPath() (string, error) {
	return pathInConfigDir(credentialsFile)
}

// GetTokenPath returns the path to the OAuth token file
func GetTokenPath() (string, error) {
	return pathInConfigDir(tokenFile)
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, configDirPermMode); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}
