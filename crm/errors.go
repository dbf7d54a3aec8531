//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package crm

import "fmt"

// APIError is a well-formed non-2xx response from the upstream CRM. 4xx
// application errors are never retried; 5xx and 429 are treated as transient.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("crm: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Transient reports whether the response class is worth retrying.
func (e *APIError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
