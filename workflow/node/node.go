//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package node implements the workflow stages: enrich, classify, plan, tag,
// respond and book. Each stage is a single-purpose handler over the
// conversation state; upstream failures inside a stage are swallowed so a
// failed side effect never aborts the turn.
package node

import (
	"context"
	"time"

	"trpc.group/trpc-go/trpc-crmflow-go/crm"
	"trpc.group/trpc-go/trpc-crmflow-go/llm"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Stage node identifiers.
const (
	StageEnrich   = "enrich"
	StageClassify = "classify"
	StagePlan     = "plan"
	StageTag      = "tag"
	StageRespond  = "respond"
	StageBook     = "book"
)

// CRMService is the subset of the CRM adapter the stages call.
type CRMService interface {
	GetContact(ctx context.Context, contactID string) (*crm.Contact, error)
	AssignTags(ctx context.Context, contactID string, tags []string) error
	SendMessage(ctx context.Context, req crm.SendMessageRequest) error
	ListCalendars(ctx context.Context, locationID string) ([]crm.Calendar, error)
	CreateAppointment(ctx context.Context, req crm.CreateAppointmentRequest) (*crm.Appointment, error)
}

// Nodes bundles the stage handlers with their shared dependencies.
type Nodes struct {
	crm               CRMService
	generator         llm.Generator // nil selects degraded mode
	responder         llm.Generator // reply drafting; falls back to generator
	defaultLocationID string
	now               func() time.Time
}

// Option configures Nodes.
type Option func(*Nodes)

// WithGenerator provides the generator capability. Leaving it unset keeps
// the classify and respond stages on their deterministic degraded paths.
func WithGenerator(generator llm.Generator) Option {
	return func(n *Nodes) { n.generator = generator }
}

// WithResponderGenerator sets a separate generator for drafting replies, so
// classification and response can run different models. Unset, the respond
// stage shares the classify generator.
func WithResponderGenerator(generator llm.Generator) Option {
	return func(n *Nodes) { n.responder = generator }
}

// WithDefaultLocationID sets the location used when the conversation state
// carries none.
func WithDefaultLocationID(locationID string) Option {
	return func(n *Nodes) { n.defaultLocationID = locationID }
}

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Nodes) { n.now = now }
}

// New creates the stage handlers.
func New(crmSvc CRMService, opts ...Option) *Nodes {
	n := &Nodes{
		crm: crmSvc,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// BuildGraph assembles the conversation workflow graph:
//
//	enrich -> classify -> plan -> {tag | respond | book} -> end
//
// The plan stage owns the only conditional branch; done and note terminate
// immediately, and any other routing value fails the turn.
func BuildGraph(n *Nodes) (*workflow.Graph, error) {
	return workflow.NewStateGraph().
		AddNode(StageEnrich, n.Enrich,
			workflow.WithDescription("fetch and merge the upstream contact record")).
		AddNode(StageClassify, n.Classify,
			workflow.WithDescription("detect language, intent, priority and sentiment")).
		AddNode(StagePlan, n.Plan,
			workflow.WithDescription("route the turn to an action")).
		AddNode(StageTag, n.Tag,
			workflow.WithDescription("apply language and intent tags upstream")).
		AddNode(StageRespond, n.Respond,
			workflow.WithDescription("draft and send a reply")).
		AddNode(StageBook, n.Book,
			workflow.WithDescription("propose a slot and book an appointment")).
		SetEntryPoint(StageEnrich).
		AddEdge(StageEnrich, StageClassify).
		AddEdge(StageClassify, StagePlan).
		AddConditionalEdges(StagePlan, routeAction, map[string]string{
			string(workflow.ActionTag):     StageTag,
			string(workflow.ActionRespond): StageRespond,
			string(workflow.ActionBook):    StageBook,
			string(workflow.ActionDone):    workflow.End,
			string(workflow.ActionNote):    workflow.End,
		}).
		SetFinishPoint(StageTag).
		SetFinishPoint(StageRespond).
		SetFinishPoint(StageBook).
		Compile()
}

// routeAction is the branch condition: a pure read of the planner decision.
func routeAction(ctx context.Context, s *workflow.State) (string, error) {
	return string(s.Planner.NextAction), nil
}

// locationID resolves the location for a state.
func (n *Nodes) locationID(s *workflow.State) string {
	if s.CRM.LocationID != "" {
		return s.CRM.LocationID
	}
	return n.defaultLocationID
}

// messageType maps a conversation channel to the CRM message type,
// defaulting to SMS.
func messageType(ch workflow.Channel) string {
	switch ch {
	case workflow.ChannelFacebook:
		return crm.MessageTypeFacebook
	case workflow.ChannelInstagram:
		return crm.MessageTypeInstagram
	default:
		return crm.MessageTypeSMS
	}
}
