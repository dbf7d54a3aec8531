//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory checkpoint saver for conversation
// state. It is intended for tests and single-process deployments; state does
// not survive a restart.
package inmemory

import (
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Saver stores checkpoints in a map keyed by thread id. All states are deep
// copied on the way in and out, so callers never share memory with the store.
type Saver struct {
	mu     sync.RWMutex
	states map[string]*workflow.State
}

// NewSaver creates a new in-memory checkpoint saver.
func NewSaver() *Saver {
	return &Saver{
		states: make(map[string]*workflow.State),
	}
}

// Get returns a copy of the checkpoint for the thread id.
func (s *Saver) Get(ctx context.Context, threadID string) (*workflow.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[threadID]
	if !ok {
		return nil, workflow.ErrCheckpointNotFound
	}
	return state.Clone(), nil
}

// Put stores a copy of the state as the checkpoint for the thread id.
func (s *Saver) Put(ctx context.Context, threadID string, state *workflow.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[threadID] = state.Clone()
	return nil
}

// Delete removes the checkpoint for the thread id.
func (s *Saver) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, threadID)
	return nil
}

// Close implements workflow.Saver. It is a no-op for the in-memory saver.
func (s *Saver) Close() error {
	return nil
}
