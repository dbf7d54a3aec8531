//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

func TestSaverRoundTrip(t *testing.T) {
	saver := NewSaver()
	ctx := context.Background()

	state := workflow.NewState("contact-1")
	state.AppendTurn(workflow.RoleUser, "hello")
	state.NLP.Intent = workflow.IntentQualify
	require.NoError(t, saver.Put(ctx, "t1", state))

	got, err := saver.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "contact-1", got.ContactID)
	assert.Equal(t, workflow.IntentQualify, got.NLP.Intent)
	require.Len(t, got.History, 1)
}

func TestSaverGetMissing(t *testing.T) {
	saver := NewSaver()
	_, err := saver.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, workflow.ErrCheckpointNotFound)
}

func TestSaverIsolatesCallers(t *testing.T) {
	saver := NewSaver()
	ctx := context.Background()

	state := workflow.NewState("contact-1")
	state.AppendTurn(workflow.RoleUser, "original")
	require.NoError(t, saver.Put(ctx, "t1", state))

	// Mutating the state after Put must not change the stored copy.
	state.History[0].Content = "mutated after put"
	state.CRM.Tags = append(state.CRM.Tags, "VIP")

	got, err := saver.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "original", got.History[0].Content)
	assert.Empty(t, got.CRM.Tags)

	// Mutating a fetched copy must not change the store either.
	got.History[0].Content = "mutated after get"
	again, err := saver.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.History[0].Content)
}

func TestSaverDelete(t *testing.T) {
	saver := NewSaver()
	ctx := context.Background()

	require.NoError(t, saver.Put(ctx, "t1", workflow.NewState("contact-1")))
	require.NoError(t, saver.Delete(ctx, "t1"))
	_, err := saver.Get(ctx, "t1")
	assert.ErrorIs(t, err, workflow.ErrCheckpointNotFound)

	// Deleting an absent thread is not an error.
	assert.NoError(t, saver.Delete(ctx, "t1"))
	assert.NoError(t, saver.Close())
}
