//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import "context"

// Saver persists conversation state keyed by thread id, enabling multi-turn
// continuity. Implementations must be safe for concurrent use across
// different thread ids; serialization of turns for a single thread id is the
// executor's responsibility.
type Saver interface {
	// Get returns the checkpoint for the thread id, or ErrCheckpointNotFound
	// when no checkpoint exists. The returned state is owned by the caller.
	Get(ctx context.Context, threadID string) (*State, error)
	// Put stores the state as the checkpoint for the thread id, replacing
	// any previous checkpoint.
	Put(ctx context.Context, threadID string, s *State) error
	// Delete removes the checkpoint for the thread id. Deleting a missing
	// checkpoint is not an error.
	Delete(ctx context.Context, threadID string) error
	// Close releases any resources held by the saver.
	Close() error
}
