// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/jira"
)

// EnvConfigFile names the environment variable pointing at an optional
// configuration file.
const EnvConfigFile = "JIRA_MCP_CONFIG_FILE"

// EnvJiraServer names the environment variable carrying the backend base
// address; it overrides the config file value when set.
const EnvJiraServer = "JIRA_SERVER"

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config represents the MCP server configuration structure.
//
// The configuration can be loaded from a JSON or YAML file specified by the
// JIRA_MCP_CONFIG_FILE environment variable, with defaults applied for any
// missing values and environment variables overriding the backend address.
// Supported file extensions: .json, .yaml, .yml
type Config struct {
	// Jira: Settings for the issue-tracker backend
	Jira struct {
		// BaseURL: Backend base address; bare hostnames get an https scheme
		BaseURL string `json:"baseURL" yaml:"baseURL"`
	} `json:"jira" yaml:"jira"`

	// Server: Settings for the SSE transport listener
	Server struct {
		// Address: Listen address for the SSE and health endpoints
		Address string `json:"address" yaml:"address"`
	} `json:"server" yaml:"server"`

	// Defaults: Default settings for tool dispatch
	Defaults struct {
		// Timeout: Timeout in seconds applied to each backend call
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	} `json:"defaults" yaml:"defaults"`
}

// detectConfigFormat determines the configuration file format based on file
// extension. It supports .json, .yaml, and .yml extensions using
// case-insensitive matching for cross-platform compatibility.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
// It delegates to the appropriate parser, ensuring consistent error handling
// across both configuration formats.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// loadConfig loads the server configuration from a JSON or YAML file or
// applies defaults.
//
// Configuration Priority:
//  1. Default values are set
//  2. JIRA_MCP_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults (if file exists and is valid)
//  4. JIRA_SERVER overrides the configured backend address
//
// A missing backend address is not an error here: absent configuration fails
// at first use, not at process start, so the dispatcher reports it per call
// instead.
func loadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set defaults
	config.Server.Address = ":8000"
	config.Defaults.Timeout = 30

	// Check environment variable for config file path if not provided
	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	// Try to load from file if path is provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Detect format and unmarshal accordingly
		format := detectConfigFormat(configPath)
		if err := unmarshalConfig(data, config, format); err != nil {
			return nil, err
		}

		// Validate and set defaults for invalid values
		if config.Defaults.Timeout <= 0 {
			config.Defaults.Timeout = 30
		}
		if config.Server.Address == "" {
			config.Server.Address = ":8000"
		}
	}

	// Override backend address from environment if set
	if env := os.Getenv(EnvJiraServer); env != "" {
		config.Jira.BaseURL = env
	}
	config.Jira.BaseURL = jira.NormalizeBaseURL(config.Jira.BaseURL)

	return config, nil
}
