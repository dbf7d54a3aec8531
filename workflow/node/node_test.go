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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-crmflow-go/crm"
	"trpc.group/trpc-go/trpc-crmflow-go/llm"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

var errUpstream = errors.New("upstream unavailable")

// fakeCRM records calls and fails selectively.
type fakeCRM struct {
	contact     *crm.Contact
	calendars   []crm.Calendar
	appointment *crm.Appointment

	failContact     bool
	failAssign      bool
	failSend        bool
	failCalendars   bool
	failAppointment bool

	assignedTags []string
	sent         []crm.SendMessageRequest
	appointments []crm.CreateAppointmentRequest
}

func (f *fakeCRM) GetContact(ctx context.Context, contactID string) (*crm.Contact, error) {
	if f.failContact {
		return nil, errUpstream
	}
	if f.contact == nil {
		return &crm.Contact{ID: contactID}, nil
	}
	return f.contact, nil
}

func (f *fakeCRM) AssignTags(ctx context.Context, contactID string, tags []string) error {
	if f.failAssign {
		return errUpstream
	}
	f.assignedTags = append([]string(nil), tags...)
	return nil
}

func (f *fakeCRM) SendMessage(ctx context.Context, req crm.SendMessageRequest) error {
	if f.failSend {
		return errUpstream
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeCRM) ListCalendars(ctx context.Context, locationID string) ([]crm.Calendar, error) {
	if f.failCalendars {
		return nil, errUpstream
	}
	return f.calendars, nil
}

func (f *fakeCRM) CreateAppointment(ctx context.Context, req crm.CreateAppointmentRequest) (*crm.Appointment, error) {
	if f.failAppointment {
		return nil, errUpstream
	}
	f.appointments = append(f.appointments, req)
	if f.appointment == nil {
		return &crm.Appointment{ID: "appt_1"}, nil
	}
	return f.appointment, nil
}

// fakeGenerator returns a fixed response or error.
type fakeGenerator struct {
	response string
	err      error
	prompts  [][]llm.Message
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	f.prompts = append(f.prompts, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newState(text string) *workflow.State {
	s := workflow.NewState("c1")
	s.LatestText = text
	return s
}

func TestBuildGraphCompiles(t *testing.T) {
	nodes := New(&fakeCRM{})
	graph, err := BuildGraph(nodes)
	require.NoError(t, err)
	assert.Equal(t, StageEnrich, graph.EntryPoint())
	_, hasBranch := graph.ConditionalEdge(StagePlan)
	assert.True(t, hasBranch)
}

func TestRouteActionReadsPlanner(t *testing.T) {
	s := newState("")
	s.Planner.NextAction = workflow.ActionBook
	result, err := routeAction(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "book", result)
}

func TestMessageTypeMapping(t *testing.T) {
	assert.Equal(t, crm.MessageTypeSMS, messageType(workflow.ChannelSMS))
	assert.Equal(t, crm.MessageTypeFacebook, messageType(workflow.ChannelFacebook))
	assert.Equal(t, crm.MessageTypeInstagram, messageType(workflow.ChannelInstagram))
	assert.Equal(t, crm.MessageTypeSMS, messageType(""))
}
