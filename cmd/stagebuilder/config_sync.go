package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jolfss/stagebuilder/internal/config"
)

// writeConfigFromEnv materialises a configuration handed over through
// STAGE_CONFIG_JSON or STAGE_CONFIG_YAML_B64 at cfgPath. It reports whether
// a payload was present.
func writeConfigFromEnv(cfgPath string) (bool, error) {
	jsonPayload := os.Getenv("STAGE_CONFIG_JSON")
	yamlPayload := os.Getenv("STAGE_CONFIG_YAML_B64")

	if jsonPayload == "" && yamlPayload == "" {
		return false, nil
	}
	if cfgPath == "" {
		return false, errors.New("environment provided configuration but no -config path supplied")
	}

	cfg := config.Default()
	if jsonPayload != "" {
		if err := config.Decode("env.json", []byte(jsonPayload), cfg); err != nil {
			return false, fmt.Errorf("decode env config json: %w", err)
		}
	} else {
		data, err := base64.StdEncoding.DecodeString(yamlPayload)
		if err != nil {
			return false, fmt.Errorf("decode env config yaml: %w", err)
		}
		if err := config.Decode("env.yaml", data, cfg); err != nil {
			return false, fmt.Errorf("parse env config yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("validate env config: %w", err)
	}

	dir := filepath.Dir(cfgPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create config directory: %w", err)
		}
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(cfgPath)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return false, fmt.Errorf("write config file: %w", err)
	}
	return true, nil
}
