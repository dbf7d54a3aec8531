//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package retry provides the shared retry policy applied to upstream calls.
package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"time"
)

// Condition determines whether an error is retryable.
type Condition interface {
	Match(err error) bool
}

// ConditionFunc is an adapter to allow the use of
// ordinary functions as Condition.
type ConditionFunc func(error) bool

// Match calls f(err).
func (f ConditionFunc) Match(err error) bool { return f(err) }

// Policy defines retry configuration for upstream calls.
// Attempts are counted inclusive of the first try. For example,
// MaxAttempts=3 means 1 initial try + up to 2 retries.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	BackoffFactor   float64
	MaxInterval     time.Duration
	RetryOn         []Condition
}

// NextDelay returns the backoff delay before the given attempt number.
// attempt starts at 1 for the first try; delay applies before the next retry,
// so callers typically pass the current attempt count.
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.InitialInterval)
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 1.0
	}
	if attempt > 1 {
		delay *= math.Pow(factor, float64(attempt-1))
	}
	maxInt := p.MaxInterval
	if maxInt <= 0 {
		maxInt = p.InitialInterval
	}
	if maxInt > 0 {
		delay = math.Min(delay, float64(maxInt))
	}
	d := time.Duration(delay)
	if d < 0 {
		d = 0
	}
	return d
}

// ShouldRetry reports whether the given error matches any of the policy's conditions.
func (p Policy) ShouldRetry(err error) bool {
	if len(p.RetryOn) == 0 {
		return false
	}
	for _, cond := range p.RetryOn {
		if cond != nil && cond.Match(err) {
			return true
		}
	}
	return false
}

// Do runs fn under the policy, sleeping between attempts. The last error is
// returned once attempts are exhausted or the error is not retryable.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == attempts || !p.ShouldRetry(err) {
			return err
		}
		select {
		case <-time.After(p.NextDelay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// OnErrors creates a condition that matches when errors.Is(err, any target).
func OnErrors(targets ...error) Condition {
	return ConditionFunc(func(err error) bool {
		for _, t := range targets {
			if t == nil {
				continue
			}
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	})
}

// OnPredicate creates a condition that defers matching to the provided function.
func OnPredicate(match func(error) bool) Condition {
	return ConditionFunc(func(err error) bool { return match(err) })
}

// TransientCondition matches common transient errors worthy of retry:
// - context.DeadlineExceeded
// - net.Error with Timeout() or Temporary()
func TransientCondition() Condition {
	return ConditionFunc(func(err error) bool {
		if err == nil {
			return false
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		var ne net.Error
		if errors.As(err, &ne) {
			if ne.Timeout() {
				return true
			}
			// Temporary() is deprecated but widely implemented
			// so still consider it when available.
			if ne.Temporary() {
				return true
			}
		}
		return false
	})
}

// Default is the uniform policy for upstream calls: 3 attempts total,
// exponential backoff starting at 500ms capped at 4s, retrying transient
// errors only.
func Default(extra ...Condition) Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		BackoffFactor:   2.0,
		MaxInterval:     4 * time.Second,
		RetryOn:         append([]Condition{TransientCondition()}, extra...),
	}
}
