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

func TestTagMergeSortedDeduplicated(t *testing.T) {
	fake := &fakeCRM{}
	nodes := New(fake)
	s := newState("hi")
	s.CRM.Tags = []string{"VIP"}
	s.NLP.Language = workflow.LanguageEN
	s.NLP.Intent = workflow.IntentQualify

	require.NoError(t, nodes.Tag(context.Background(), s))
	want := []string{"English", "VIP", "intent:qualify"}
	assert.Equal(t, want, s.CRM.Tags)
	assert.Equal(t, want, fake.assignedTags)
	assert.Equal(t, workflow.ActionDone, s.Planner.NextAction)
}

func TestTagIdempotent(t *testing.T) {
	fake := &fakeCRM{}
	nodes := New(fake)
	s := newState("hola")
	s.CRM.Tags = []string{"VIP"}
	s.NLP.Language = workflow.LanguageES
	s.NLP.Intent = workflow.IntentOutOfScope

	require.NoError(t, nodes.Tag(context.Background(), s))
	first := append([]string(nil), s.CRM.Tags...)
	require.NoError(t, nodes.Tag(context.Background(), s))
	assert.Equal(t, first, s.CRM.Tags)
}

func TestTagOptimisticLocalWriteOnUpstreamFailure(t *testing.T) {
	fake := &fakeCRM{failAssign: true}
	nodes := New(fake)
	s := newState("hola")
	s.NLP.Language = workflow.LanguageES
	s.NLP.Intent = workflow.IntentOutOfScope

	require.NoError(t, nodes.Tag(context.Background(), s))
	// The computed set still lands in local state.
	assert.Equal(t, []string{"Spanish", "intent:out_of_scope"}, s.CRM.Tags)
	assert.Nil(t, fake.assignedTags)
	assert.Equal(t, workflow.ActionDone, s.Planner.NextAction)
}

func TestTagUnsetIntentOmitsIntentTag(t *testing.T) {
	fake := &fakeCRM{}
	nodes := New(fake)
	s := newState("hello")

	require.NoError(t, nodes.Tag(context.Background(), s))
	assert.Equal(t, []string{"English"}, s.CRM.Tags)
}
