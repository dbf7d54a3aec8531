//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow/checkpoint/inmemory"
)

// branchGraph builds a minimal plan-style graph: a decide node sets the
// planner action, then the branch routes to mark nodes or End.
func branchGraph(t *testing.T, decide workflow.NodeFunc) *workflow.Graph {
	t.Helper()
	mark := func(name string) workflow.NodeFunc {
		return func(ctx context.Context, s *workflow.State) error {
			s.AppendTurn(workflow.RoleAssistant, name)
			s.Planner.NextAction = workflow.ActionDone
			return nil
		}
	}
	graph, err := workflow.NewStateGraph().
		AddNode("decide", decide).
		AddNode("tag", mark("tagged")).
		AddNode("respond", mark("responded")).
		AddNode("book", mark("booked")).
		SetEntryPoint("decide").
		AddConditionalEdges("decide", func(ctx context.Context, s *workflow.State) (string, error) {
			return string(s.Planner.NextAction), nil
		}, map[string]string{
			"tag":     "tag",
			"respond": "respond",
			"book":    "book",
			"done":    workflow.End,
			"note":    workflow.End,
		}).
		SetFinishPoint("tag").
		SetFinishPoint("respond").
		SetFinishPoint("book").
		Compile()
	require.NoError(t, err)
	return graph
}

func setAction(action workflow.NextAction) workflow.NodeFunc {
	return func(ctx context.Context, s *workflow.State) error {
		s.Planner.NextAction = action
		return nil
	}
}

func TestRunRoutesBranch(t *testing.T) {
	tests := []struct {
		action workflow.NextAction
		mark   string
	}{
		{workflow.ActionTag, "tagged"},
		{workflow.ActionRespond, "responded"},
		{workflow.ActionBook, "booked"},
	}
	for _, tt := range tests {
		saver := inmemory.NewSaver()
		exec, err := workflow.NewExecutor(branchGraph(t, setAction(tt.action)), saver)
		require.NoError(t, err)

		state, err := exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1", LatestText: "hi"})
		require.NoError(t, err)
		require.NotEmpty(t, state.History)
		assert.Equal(t, tt.mark, state.History[len(state.History)-1].Content, "action %s", tt.action)
	}
}

func TestRunTerminatesOnDoneAndNote(t *testing.T) {
	for _, action := range []workflow.NextAction{workflow.ActionDone, workflow.ActionNote} {
		saver := inmemory.NewSaver()
		exec, err := workflow.NewExecutor(branchGraph(t, setAction(action)), saver)
		require.NoError(t, err)

		state, err := exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1", LatestText: "hi"})
		require.NoError(t, err)
		// Only the inbound user turn: no action node ran.
		require.Len(t, state.History, 1)
		assert.Equal(t, workflow.RoleUser, state.History[0].Role)
	}
}

func TestRunFailsFastOnUnknownBranchValue(t *testing.T) {
	saver := inmemory.NewSaver()
	exec, err := workflow.NewExecutor(branchGraph(t, setAction("escalate")), saver)
	require.NoError(t, err)

	_, err = exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1"})
	require.ErrorIs(t, err, workflow.ErrExecutionFault)

	// The failed turn must not have written a checkpoint.
	_, err = saver.Get(context.Background(), "c1")
	assert.ErrorIs(t, err, workflow.ErrCheckpointNotFound)
}

func TestRunRejectsEmptyContactID(t *testing.T) {
	saver := inmemory.NewSaver()
	exec, err := workflow.NewExecutor(branchGraph(t, setAction(workflow.ActionDone)), saver)
	require.NoError(t, err)

	_, err = exec.Run(context.Background(), "c1", workflow.TurnInput{})
	require.ErrorIs(t, err, workflow.ErrContactIDRequired)

	_, err = exec.Run(context.Background(), "", workflow.TurnInput{ContactID: "c1"})
	require.ErrorIs(t, err, workflow.ErrContactIDRequired)
}

func TestRunAbortDiscardsPartialMutations(t *testing.T) {
	saver := inmemory.NewSaver()
	prior := workflow.NewState("c1")
	prior.AppendTurn(workflow.RoleUser, "first message")
	require.NoError(t, saver.Put(context.Background(), "c1", prior))

	boom := func(ctx context.Context, s *workflow.State) error {
		s.AppendTurn(workflow.RoleAssistant, "partial mutation")
		return errors.New("node exploded")
	}
	exec, err := workflow.NewExecutor(branchGraph(t, boom), saver)
	require.NoError(t, err)

	_, err = exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1", LatestText: "second"})
	require.Error(t, err)

	// Prior checkpoint survives untouched.
	restored, err := saver.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, restored.History, 1)
	assert.Equal(t, "first message", restored.History[0].Content)
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	saver := inmemory.NewSaver()
	exec, err := workflow.NewExecutor(branchGraph(t, setAction(workflow.ActionRespond)), saver)
	require.NoError(t, err)

	_, err = exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1", LatestText: "turn one"})
	require.NoError(t, err)
	state, err := exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1", LatestText: "turn two"})
	require.NoError(t, err)

	// user, assistant, user, assistant.
	require.Len(t, state.History, 4)
	assert.Equal(t, "turn one", state.History[0].Content)
	assert.Equal(t, "turn two", state.History[2].Content)
}

func TestRunClearsStalePlannerDecision(t *testing.T) {
	saver := inmemory.NewSaver()
	stale := workflow.NewState("c1")
	stale.Planner = workflow.PlannerData{NextAction: workflow.ActionBook, Rationale: "old"}
	require.NoError(t, saver.Put(context.Background(), "c1", stale))

	var observed workflow.NextAction
	decide := func(ctx context.Context, s *workflow.State) error {
		observed = s.Planner.NextAction
		s.Planner.NextAction = workflow.ActionDone
		return nil
	}
	exec, err := workflow.NewExecutor(branchGraph(t, decide), saver)
	require.NoError(t, err)

	_, err = exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, workflow.NextAction(""), observed)
}

func TestRunThreadIsolation(t *testing.T) {
	saver := inmemory.NewSaver()
	exec, err := workflow.NewExecutor(branchGraph(t, setAction(workflow.ActionRespond)), saver)
	require.NoError(t, err)

	const turns = 20
	var wg sync.WaitGroup
	for _, threadID := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < turns; i++ {
				_, err := exec.Run(context.Background(), id, workflow.TurnInput{
					ContactID:  id,
					LatestText: "message from " + id,
				})
				assert.NoError(t, err)
			}
		}(threadID)
	}
	wg.Wait()

	for _, threadID := range []string{"alice", "bob"} {
		state, err := saver.Get(context.Background(), threadID)
		require.NoError(t, err)
		require.Len(t, state.History, 2*turns)
		for _, turn := range state.History {
			if turn.Role == workflow.RoleUser {
				assert.Equal(t, "message from "+threadID, turn.Content)
			}
		}
	}
}

func TestRunStepLimit(t *testing.T) {
	// a -> b -> a loop must trip the step limit.
	graph, err := workflow.NewStateGraph().
		AddNode("a", func(ctx context.Context, s *workflow.State) error { return nil }).
		AddNode("b", func(ctx context.Context, s *workflow.State) error { return nil }).
		SetEntryPoint("a").
		AddEdge("a", "b").
		AddEdge("b", "a").
		Compile()
	require.NoError(t, err)

	exec, err := workflow.NewExecutor(graph, inmemory.NewSaver(), workflow.WithMaxSteps(5))
	require.NoError(t, err)
	_, err = exec.Run(context.Background(), "c1", workflow.TurnInput{ContactID: "c1"})
	require.ErrorIs(t, err, workflow.ErrExecutionFault)
}
