//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI-compatible generator implementation.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-crmflow-go/llm"
)

const defaultMaxRetries = 3

// Generator calls an OpenAI-compatible chat completion endpoint.
type Generator struct {
	name   string
	client openai.Client
}

// options contains configuration options for creating a Generator.
type options struct {
	apiKey     string
	baseURL    string
	maxRetries int
}

// Option configures the Generator.
type Option func(*options)

// WithAPIKey sets the API key. When unset the client falls back to the
// OPENAI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(o *options) { o.apiKey = apiKey }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithMaxRetries overrides the transport-level retry count.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// New creates a generator for the given model name.
func New(name string, opts ...Option) *Generator {
	o := options{maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(&o)
	}
	clientOpts := []openaiopt.RequestOption{
		openaiopt.WithMaxRetries(o.maxRetries),
	}
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	return &Generator{
		name:   name,
		client: openai.NewClient(clientOpts...),
	}
}

// Generate implements llm.Generator.
func (g *Generator) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	request := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(g.name),
		Messages: convertMessages(messages),
	}
	completion, err := g.client.Chat.Completions.New(ctx, request)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai completion: empty choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func convertMessages(messages []llm.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case llm.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}
