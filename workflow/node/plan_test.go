//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

func TestPlanRoutingTable(t *testing.T) {
	tests := []struct {
		intent workflow.Intent
		want   workflow.NextAction
	}{
		{workflow.IntentBook, workflow.ActionBook},
		{workflow.IntentPrice, workflow.ActionRespond},
		{workflow.IntentQualify, workflow.ActionRespond},
		{workflow.IntentInfo, workflow.ActionRespond},
		{workflow.IntentOutOfScope, workflow.ActionTag},
		{workflow.Intent(""), workflow.ActionRespond},
		{workflow.Intent("gibberish"), workflow.ActionRespond},
	}
	nodes := New(&fakeCRM{})
	for _, tt := range tests {
		s := newState("hi")
		s.NLP.Intent = tt.intent
		require.NoError(t, nodes.Plan(context.Background(), s))
		assert.Equal(t, tt.want, s.Planner.NextAction, "intent %q", tt.intent)
	}
}

func TestPlanRationaleEncodesIntent(t *testing.T) {
	nodes := New(&fakeCRM{})
	s := newState("how much is it?")
	s.NLP.Intent = workflow.IntentPrice

	require.NoError(t, nodes.Plan(context.Background(), s))
	assert.Equal(t, workflow.ActionRespond, s.Planner.NextAction)
	assert.Contains(t, s.Planner.Rationale, "price")
}

func TestPlanUnsetIntentRationale(t *testing.T) {
	nodes := New(&fakeCRM{})
	s := newState("")

	require.NoError(t, nodes.Plan(context.Background(), s))
	assert.Contains(t, s.Planner.Rationale, "unset")
}
