//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads process configuration from the environment.
package config

import (
	"os"

	"trpc.group/trpc-go/trpc-crmflow-go/crm"
)

// Default values used when the corresponding variable is unset.
const (
	DefaultModel = "gpt-4o-mini"
	DefaultAddr  = ":8080"
)

// Config holds every tunable read from the environment. Zero values mean the
// variable was unset; callers decide whether that disables a feature (an empty
// OpenAIAPIKey runs the pipeline in degraded mode) or falls back to a default.
type Config struct {
	// OpenAI settings. An empty API key disables LLM calls entirely.
	OpenAIAPIKey    string
	ClassifierModel string
	ResponderModel  string

	// CRM settings.
	CRMAPIKey     string
	CRMAPIVersion string
	CRMLocationID string
	CRMBaseURL    string

	// Server settings.
	Addr string

	// CheckpointPath selects the SQLite checkpoint file. Empty keeps
	// checkpoints in memory.
	CheckpointPath string

	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		ClassifierModel: getEnv("CRMFLOW_CLASSIFIER_MODEL", DefaultModel),
		ResponderModel:  getEnv("CRMFLOW_RESPONDER_MODEL", DefaultModel),
		CRMAPIKey:       os.Getenv("GHL_API_KEY"),
		CRMAPIVersion:   getEnv("GHL_API_VERSION", crm.DefaultAPIVersion),
		CRMLocationID:   os.Getenv("GHL_LOCATION_ID"),
		CRMBaseURL:      getEnv("GHL_BASE_URL", crm.DefaultBaseURL),
		Addr:            getEnv("CRMFLOW_ADDR", DefaultAddr),
		CheckpointPath:  os.Getenv("CRMFLOW_CHECKPOINT_PATH"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// LLMEnabled reports whether an OpenAI API key is configured.
func (c *Config) LLMEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
