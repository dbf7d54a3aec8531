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
	"fmt"

	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Plan maps the classified intent to the next action. It is a pure function
// of the state with no I/O: book intents book, out-of-scope messages get
// tagged, everything else (including an unset intent) gets a response.
func (n *Nodes) Plan(ctx context.Context, s *workflow.State) error {
	var action workflow.NextAction
	switch s.NLP.Intent {
	case workflow.IntentBook:
		action = workflow.ActionBook
	case workflow.IntentOutOfScope:
		action = workflow.ActionTag
	case workflow.IntentPrice, workflow.IntentQualify, workflow.IntentInfo:
		action = workflow.ActionRespond
	default:
		action = workflow.ActionRespond
	}

	intent := string(s.NLP.Intent)
	if intent == "" {
		intent = "unset"
	}
	s.Planner.NextAction = action
	s.Planner.Rationale = fmt.Sprintf("intent=%s routed to %s", intent, action)
	return nil
}
