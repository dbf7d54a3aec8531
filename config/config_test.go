//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trpc.group/trpc-go/trpc-crmflow-go/crm"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"OPENAI_API_KEY", "CRMFLOW_CLASSIFIER_MODEL", "CRMFLOW_RESPONDER_MODEL",
		"GHL_API_KEY", "GHL_API_VERSION", "GHL_LOCATION_ID", "GHL_BASE_URL",
		"CRMFLOW_ADDR", "CRMFLOW_CHECKPOINT_PATH", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, DefaultModel, cfg.ClassifierModel)
	assert.Equal(t, DefaultModel, cfg.ResponderModel)
	assert.Equal(t, crm.DefaultAPIVersion, cfg.CRMAPIVersion)
	assert.Equal(t, crm.DefaultBaseURL, cfg.CRMBaseURL)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.CheckpointPath)
	assert.False(t, cfg.LLMEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CRMFLOW_CLASSIFIER_MODEL", "gpt-4o")
	t.Setenv("GHL_BASE_URL", "http://localhost:9999")
	t.Setenv("CRMFLOW_ADDR", ":9090")
	t.Setenv("CRMFLOW_CHECKPOINT_PATH", "/tmp/cp.db")

	cfg := Load()
	assert.True(t, cfg.LLMEnabled())
	assert.Equal(t, "gpt-4o", cfg.ClassifierModel)
	assert.Equal(t, DefaultModel, cfg.ResponderModel)
	assert.Equal(t, "http://localhost:9999", cfg.CRMBaseURL)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/cp.db", cfg.CheckpointPath)
}
