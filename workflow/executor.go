//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/telemetry/trace"
)

// TurnInput carries the caller-supplied fields for one turn. Fields left
// empty keep their checkpointed values.
type TurnInput struct {
	ContactID      string
	LatestText     string
	Channel        Channel
	ConversationID string
}

// Executor runs turns against a compiled graph, checking conversation state
// out of and back into the checkpoint saver.
type Executor struct {
	graph    *Graph
	saver    Saver
	maxSteps int
	locks    *keyedMutex
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithMaxSteps sets the maximum number of node executions per turn.
func WithMaxSteps(maxSteps int) ExecutorOption {
	return func(e *Executor) {
		e.maxSteps = maxSteps
	}
}

// NewExecutor creates a new executor for the given graph and saver.
func NewExecutor(graph *Graph, saver Saver, opts ...ExecutorOption) (*Executor, error) {
	if graph == nil {
		return nil, errors.New("graph is nil")
	}
	if err := graph.validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	if saver == nil {
		return nil, errors.New("saver is nil")
	}
	e := &Executor{
		graph:    graph,
		saver:    saver,
		maxSteps: 16,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes one turn for the given thread id. The prior checkpoint (if
// any) is loaded and merged with the input, the graph runs to End, and the
// resulting state is persisted and returned. A fault inside any node aborts
// the turn and discards the in-memory state, leaving the prior checkpoint
// untouched so the conversation stays resumable.
//
// At most one turn runs per thread id at a time; turns for different thread
// ids proceed concurrently.
func (e *Executor) Run(ctx context.Context, threadID string, input TurnInput) (*State, error) {
	if threadID == "" {
		return nil, fmt.Errorf("%w: empty thread id", ErrContactIDRequired)
	}
	if input.ContactID == "" {
		return nil, ErrContactIDRequired
	}

	unlock := e.locks.lock(threadID)
	defer unlock()

	turnID := uuid.NewString()
	ctx, span := trace.Tracer.Start(ctx, "run_turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("trpc.go.crmflow.thread_id", threadID),
		attribute.String("trpc.go.crmflow.turn_id", turnID),
	)

	state, err := e.checkout(ctx, threadID, input)
	if err != nil {
		return nil, err
	}

	currentNodeID := e.graph.EntryPoint()
	var stepCount int
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		stepCount++
		if stepCount > e.maxSteps {
			return nil, fmt.Errorf("%w: maximum execution steps (%d) exceeded", ErrExecutionFault, e.maxSteps)
		}
		if currentNodeID == End {
			break
		}
		nextNodeID, err := e.executeNode(ctx, state, currentNodeID, turnID)
		if err != nil {
			return nil, fmt.Errorf("error executing node %s: %w", currentNodeID, err)
		}
		currentNodeID = nextNodeID
	}

	if err := e.saver.Put(ctx, threadID, state); err != nil {
		return nil, fmt.Errorf("persist checkpoint for thread %s: %w", threadID, err)
	}
	log.Debugf("turn %s finished for thread %s: next_action=%s intent=%s",
		turnID, threadID, state.Planner.NextAction, state.NLP.Intent)
	return state, nil
}

// checkout loads the prior checkpoint or creates a fresh state, then merges
// the caller-supplied input fields.
func (e *Executor) checkout(ctx context.Context, threadID string, input TurnInput) (*State, error) {
	state, err := e.saver.Get(ctx, threadID)
	switch {
	case errors.Is(err, ErrCheckpointNotFound):
		state = NewState(input.ContactID)
	case err != nil:
		return nil, fmt.Errorf("load checkpoint for thread %s: %w", threadID, err)
	}
	if state.ContactID == "" {
		state.ContactID = input.ContactID
	}
	state.LatestText = input.LatestText
	if input.Channel != "" {
		state.Channel = input.Channel
	}
	if input.ConversationID != "" {
		state.ConversationID = input.ConversationID
	}
	// Clear the previous turn's decision so stale routing never leaks into
	// this turn.
	state.Planner = PlannerData{}
	if state.LatestText != "" {
		state.AppendTurn(RoleUser, state.LatestText)
	}
	return state, nil
}

// executeNode executes a single node and returns the next node ID.
func (e *Executor) executeNode(ctx context.Context, state *State, nodeID, turnID string) (string, error) {
	node, exists := e.graph.Node(nodeID)
	if !exists {
		return "", fmt.Errorf("%w: node %s not found", ErrExecutionFault, nodeID)
	}

	ctx, span := trace.Tracer.Start(ctx, fmt.Sprintf("execute_node %s", nodeID))
	defer span.End()
	span.SetAttributes(
		attribute.String("trpc.go.crmflow.node_id", nodeID),
		attribute.String("trpc.go.crmflow.turn_id", turnID),
	)

	if node.Function != nil {
		if err := node.Function(ctx, state); err != nil {
			span.SetAttributes(attribute.String("trpc.go.crmflow.error", err.Error()))
			return "", fmt.Errorf("node function execution failed: %w", err)
		}
	}
	nextNode, err := e.selectNextNode(ctx, state, nodeID)
	if err == nil {
		span.SetAttributes(attribute.String("trpc.go.crmflow.next_node", nextNode))
	}
	return nextNode, err
}

// selectNextNode selects the next node based on edges and conditional logic.
func (e *Executor) selectNextNode(ctx context.Context, state *State, currentNodeID string) (string, error) {
	if condEdge, exists := e.graph.ConditionalEdge(currentNodeID); exists {
		conditionResult, err := condEdge.Condition(ctx, state)
		if err != nil {
			return "", fmt.Errorf("conditional edge evaluation failed: %w", err)
		}
		if nextNode, exists := condEdge.PathMap[conditionResult]; exists {
			return nextNode, nil
		}
		return "", fmt.Errorf("%w: condition result %q not found in path map", ErrExecutionFault, conditionResult)
	}
	edges := e.graph.Edges(currentNodeID)
	if len(edges) == 0 {
		// No outgoing edges, assume we should go to End.
		return End, nil
	}
	return edges[0].To, nil
}

// keyedMutex serializes turns per thread id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*threadLock)}
}

// lock acquires the mutex for the key and returns its release function.
// Entries are reference counted so idle threads do not accumulate.
func (km *keyedMutex) lock(key string) func() {
	km.mu.Lock()
	tl, ok := km.locks[key]
	if !ok {
		tl = &threadLock{}
		km.locks[key] = tl
	}
	tl.refs++
	km.mu.Unlock()

	tl.mu.Lock()
	return func() {
		tl.mu.Unlock()
		km.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(km.locks, key)
		}
		km.mu.Unlock()
	}
}
