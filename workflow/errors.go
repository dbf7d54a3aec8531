//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import "errors"

// Errors.
var (
	// ErrContactIDRequired is returned when a turn reaches the executor
	// without a contact id.
	ErrContactIDRequired = errors.New("contact id is required")
	// ErrExecutionFault marks a programming fault in graph execution, such
	// as a planner decision outside its enumeration. It is fatal to the
	// turn and never mapped to a default branch.
	ErrExecutionFault = errors.New("execution fault")
	// ErrCheckpointNotFound is returned by savers when no checkpoint exists
	// for a thread id.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)
