//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package sqlite provides a SQLite-backed checkpoint saver so conversation
// state survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Driver registration only.
	_ "github.com/mattn/go-sqlite3"

	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

const (
	sqliteCreateCheckpoints = "CREATE TABLE IF NOT EXISTS checkpoints (" +
		"thread_id TEXT NOT NULL, " +
		"ts INTEGER NOT NULL, " +
		"state_json BLOB NOT NULL, " +
		"PRIMARY KEY (thread_id)" +
		")"

	sqliteUpsertCheckpoint = "INSERT INTO checkpoints (thread_id, ts, state_json) VALUES (?, ?, ?) " +
		"ON CONFLICT(thread_id) DO UPDATE SET ts = excluded.ts, state_json = excluded.state_json"
	sqliteSelectCheckpoint = "SELECT state_json FROM checkpoints WHERE thread_id = ?"
	sqliteDeleteCheckpoint = "DELETE FROM checkpoints WHERE thread_id = ?"
)

// Saver persists one checkpoint row per thread id, the state serialized as a
// JSON blob.
type Saver struct {
	db *sql.DB
}

// NewSaver creates a saver on an existing database handle, creating the
// checkpoint table if needed.
func NewSaver(db *sql.DB) (*Saver, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if _, err := db.Exec(sqliteCreateCheckpoints); err != nil {
		return nil, fmt.Errorf("create checkpoints table: %w", err)
	}
	return &Saver{db: db}, nil
}

// Open opens (or creates) the database file at path and returns a saver
// owning the handle.
func Open(path string) (*Saver, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	saver, err := NewSaver(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return saver, nil
}

// Get returns the checkpoint for the thread id.
func (s *Saver) Get(ctx context.Context, threadID string) (*workflow.State, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, sqliteSelectCheckpoint, threadID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query checkpoint for thread %s: %w", threadID, err)
	}
	var state workflow.State
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("decode checkpoint for thread %s: %w", threadID, err)
	}
	return &state, nil
}

// Put stores the state as the checkpoint for the thread id.
func (s *Saver) Put(ctx context.Context, threadID string, state *workflow.State) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkpoint for thread %s: %w", threadID, err)
	}
	if _, err := s.db.ExecContext(ctx, sqliteUpsertCheckpoint,
		threadID, time.Now().UnixMilli(), blob); err != nil {
		return fmt.Errorf("store checkpoint for thread %s: %w", threadID, err)
	}
	return nil
}

// Delete removes the checkpoint for the thread id.
func (s *Saver) Delete(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx, sqliteDeleteCheckpoint, threadID); err != nil {
		return fmt.Errorf("delete checkpoint for thread %s: %w", threadID, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Saver) Close() error {
	return s.db.Close()
}
