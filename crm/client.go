//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package crm is the resilient adapter around the upstream CRM REST API.
// Every call runs under a uniform retry policy: up to 3 attempts with
// exponential backoff, retrying only transport errors and transient response
// classes. Well-formed application errors propagate immediately; whether an
// exhausted call is fatal to the turn is each caller's policy decision.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"trpc.group/trpc-go/trpc-crmflow-go/internal/retry"
	"trpc.group/trpc-go/trpc-crmflow-go/log"
)

const (
	// DefaultBaseURL is the public CRM API host.
	DefaultBaseURL = "https://services.leadconnectorhq.com"
	// DefaultAPIVersion is the required Version header value.
	DefaultAPIVersion = "2021-07-28"

	defaultTimeout = 10 * time.Second
)

// Client is an HTTP client for the CRM REST API.
type Client struct {
	baseURL    string
	apiKey     string
	apiVersion string
	locationID string
	httpClient *http.Client
	policy     retry.Policy
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithAPIVersion overrides the Version header value.
func WithAPIVersion(version string) Option {
	return func(c *Client) { c.apiVersion = version }
}

// WithLocationID scopes requests to a location via the LocationId header and
// provides the default location for location-keyed endpoints.
func WithLocationID(locationID string) Option {
	return func(c *Client) { c.locationID = locationID }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) { c.policy = policy }
}

// New creates a CRM client authenticated with the given bearer token.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{Timeout: defaultTimeout},
		policy:     retry.Default(transientResponseCondition()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LocationID returns the client's configured location scope.
func (c *Client) LocationID() string {
	return c.locationID
}

// transientResponseCondition retries API errors in the transient response
// classes on top of the default transport conditions.
func transientResponseCondition() retry.Condition {
	return retry.OnPredicate(func(err error) bool {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.Transient()
		}
		var urlErr *url.Error
		return errors.As(err, &urlErr)
	})
}

// GetContact fetches a contact record by id.
func (c *Client) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	var out struct {
		Contact Contact `json:"contact"`
	}
	if err := c.do(ctx, http.MethodGet, "/contacts/"+contactID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Contact, nil
}

// ListContacts lists contacts at the client's location.
func (c *Client) ListContacts(ctx context.Context, limit int) ([]Contact, error) {
	query := url.Values{}
	if c.locationID != "" {
		query.Set("locationId", c.locationID)
	}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var out struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, "/contacts", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// ListTags lists the tags defined at a location.
func (c *Client) ListTags(ctx context.Context, locationID string) ([]LocationTag, error) {
	var out struct {
		Tags []LocationTag `json:"tags"`
	}
	path := fmt.Sprintf("/locations/%s/tags", locationID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// CreateTag defines a new tag at a location.
func (c *Client) CreateTag(ctx context.Context, locationID, name string) (*LocationTag, error) {
	var out struct {
		Tag LocationTag `json:"tag"`
	}
	path := fmt.Sprintf("/locations/%s/tags", locationID)
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Tag, nil
}

// AssignTags submits the full tag set for a contact.
func (c *Client) AssignTags(ctx context.Context, contactID string, tags []string) error {
	path := fmt.Sprintf("/contacts/%s/tags", contactID)
	body := map[string][]string{"tags": tags}
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

// SendMessage sends an outbound message on the conversations API.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	body := map[string]any{
		"type":      req.Type,
		"contactId": req.ContactID,
		"message":   req.Message,
	}
	if c.locationID != "" {
		body["locationId"] = c.locationID
	}
	return c.do(ctx, http.MethodPost, "/conversations/messages", nil, body, nil)
}

// ListCalendars lists the calendars at a location.
func (c *Client) ListCalendars(ctx context.Context, locationID string) ([]Calendar, error) {
	var out struct {
		Calendars []Calendar `json:"calendars"`
	}
	path := fmt.Sprintf("/locations/%s/calendars", locationID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Calendars, nil
}

// CreateAppointment books an appointment on a calendar.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*Appointment, error) {
	body := map[string]any{
		"calendarId": req.CalendarID,
		"contactId":  req.ContactID,
		"startTime":  req.StartTime.UTC().Format(time.RFC3339),
	}
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one API call under the retry policy and decodes the response
// into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("crm: encode %s %s body: %w", method, path, err)
		}
	}
	return c.policy.Do(ctx, func(ctx context.Context) error {
		return c.doOnce(ctx, method, path, query, payload, out)
	})
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("crm: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.locationID != "" {
		req.Header.Set("LocationId", c.locationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(snippet),
		}
		log.Debugf("crm api error: %v", apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("crm: decode %s %s response: %w", method, path, err)
	}
	return nil
}
