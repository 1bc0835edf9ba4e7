package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// HarnessConfig contains all configuration for the verification harness.
type HarnessConfig struct {
	Controller ControllerConfig `mapstructure:"controller"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Scenario   ScenarioConfig   `mapstructure:"scenario"`
	Workspace  WorkspaceConfig  `mapstructure:"workspace"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ControllerConfig describes how to invoke the external job controller.
type ControllerConfig struct {
	// Command is the controller executable plus any leading arguments,
	// e.g. ["java", "-jar", "/opt/avro/avro-tools.jar"].
	Command  []string `mapstructure:"command"`
	Protocol string   `mapstructure:"protocol"`
}

// WorkerConfig describes the launcher artifact handed to the controller.
type WorkerConfig struct {
	// Script is the full body of the launcher script the controller
	// executes to start the tethered worker. Opaque to the harness.
	Script string `mapstructure:"script"`
}

// ScenarioConfig contains per-scenario execution settings.
type ScenarioConfig struct {
	// Timeout bounds the wait for the controller to exit. Zero waits
	// forever.
	Timeout time.Duration `mapstructure:"timeout"`
}

// WorkspaceConfig contains scratch directory settings.
type WorkspaceConfig struct {
	// Root is the parent directory for per-run workspaces. Empty uses
	// the OS temp directory.
	Root string `mapstructure:"root"`
}

const defaultWorkerScript = `#!/bin/bash
exec tether-wordcount-worker
`

// Load loads the harness configuration from the given path.
// If configPath is empty, it looks for harness.yaml in the config/ directory.
// Environment variables with TETHER_ prefix override config file values.
func Load(configPath string) (*HarnessConfig, error) {
	v := viper.New()

	v.SetDefault("controller.command", []string{"avro-tools"})
	v.SetDefault("controller.protocol", "http")
	v.SetDefault("worker.script", defaultWorkerScript)
	v.SetDefault("scenario.timeout", time.Duration(0))
	v.SetDefault("workspace.root", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("harness")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TETHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg HarnessConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(cfg.Controller.Command) == 0 {
		return nil, fmt.Errorf("controller.command must not be empty")
	}

	return &cfg, nil
}
