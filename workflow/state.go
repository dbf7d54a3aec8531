//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package workflow provides the conversation workflow engine: a state graph
// executor that threads one conversation state through the processing stages
// and checkpoints it per conversation thread.
package workflow

import (
	"time"
)

// Channel identifies the messaging channel a conversation arrived on.
type Channel string

// Supported channels.
const (
	ChannelSMS       Channel = "sms"
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
)

// ParseChannel normalizes a raw channel value. Unrecognized values fall back
// to SMS.
func ParseChannel(raw string) Channel {
	switch Channel(raw) {
	case ChannelSMS, ChannelFacebook, ChannelInstagram:
		return Channel(raw)
	default:
		return ChannelSMS
	}
}

// Language is the detected conversation language.
type Language string

// Supported languages.
const (
	LanguageES Language = "es"
	LanguageEN Language = "en"
)

// Intent is the classified intent of the latest inbound message.
type Intent string

// Recognized intents.
const (
	IntentQualify    Intent = "qualify"
	IntentPrice      Intent = "price"
	IntentBook       Intent = "book"
	IntentInfo       Intent = "info"
	IntentOutOfScope Intent = "out_of_scope"
)

// KnownIntent reports whether v is one of the recognized intents.
func KnownIntent(v Intent) bool {
	switch v {
	case IntentQualify, IntentPrice, IntentBook, IntentInfo, IntentOutOfScope:
		return true
	}
	return false
}

// Sentiment is the classified sentiment of the latest inbound message.
type Sentiment string

// Recognized sentiments.
const (
	SentimentPos Sentiment = "pos"
	SentimentNeu Sentiment = "neu"
	SentimentNeg Sentiment = "neg"
)

// NextAction is the planner's routing decision.
type NextAction string

// Planner actions. ActionNote is part of the enumeration and terminates the
// turn immediately, but no planner currently emits it; it is reserved.
const (
	ActionTag     NextAction = "tag"
	ActionRespond NextAction = "respond"
	ActionBook    NextAction = "book"
	ActionNote    NextAction = "note"
	ActionDone    NextAction = "done"
)

// History roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CRMData holds the contact's CRM-side attributes.
type CRMData struct {
	Tags         []string          `json:"tags,omitempty"`
	Stage        string            `json:"stage,omitempty"`
	LocationID   string            `json:"location_id,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// NLPData holds classification output. All fields are unset until the
// classify stage runs.
type NLPData struct {
	Language  Language  `json:"language,omitempty"`
	Intent    Intent    `json:"intent,omitempty"`
	Priority  int       `json:"priority,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// PlannerData holds the routing decision and its diagnostic rationale.
type PlannerData struct {
	NextAction NextAction `json:"next_action,omitempty"`
	Rationale  string     `json:"rationale,omitempty"`
}

// BookingData holds appointment scheduling output.
type BookingData struct {
	ProposedSlots []time.Time `json:"proposed_slots,omitempty"`
	SelectedSlot  *time.Time  `json:"selected_slot,omitempty"`
	AppointmentID string      `json:"appointment_id,omitempty"`
}

// State is the conversation state threaded through the workflow. One instance
// exists per conversation thread; the executor owns it exclusively for the
// duration of a turn, checking it out of and back into the checkpoint saver.
type State struct {
	ContactID      string  `json:"contact_id"`
	ConversationID string  `json:"conversation_id,omitempty"`
	Channel        Channel `json:"channel,omitempty"`
	LatestText     string  `json:"latest_text,omitempty"`

	CRM     CRMData     `json:"crm"`
	NLP     NLPData     `json:"nlp"`
	Planner PlannerData `json:"planner"`
	Booking BookingData `json:"booking"`

	// History is append-only: stages add turns but never reorder or
	// truncate it.
	History []Turn         `json:"history,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// NewState creates a fresh state for a conversation thread.
func NewState(contactID string) *State {
	return &State{ContactID: contactID}
}

// Clone creates a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	if s.CRM.Tags != nil {
		clone.CRM.Tags = append([]string(nil), s.CRM.Tags...)
	}
	if s.CRM.CustomFields != nil {
		clone.CRM.CustomFields = make(map[string]string, len(s.CRM.CustomFields))
		for k, v := range s.CRM.CustomFields {
			clone.CRM.CustomFields[k] = v
		}
	}
	if s.Booking.ProposedSlots != nil {
		clone.Booking.ProposedSlots = append([]time.Time(nil), s.Booking.ProposedSlots...)
	}
	if s.Booking.SelectedSlot != nil {
		slot := *s.Booking.SelectedSlot
		clone.Booking.SelectedSlot = &slot
	}
	if s.History != nil {
		clone.History = append([]Turn(nil), s.History...)
	}
	if s.Meta != nil {
		clone.Meta = make(map[string]any, len(s.Meta))
		for k, v := range s.Meta {
			clone.Meta[k] = v
		}
	}
	return &clone
}

// AppendTurn appends one history entry.
func (s *State) AppendTurn(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
}

// SetCustomField records a custom field value, allocating the map lazily.
func (s *State) SetCustomField(key, value string) {
	if s.CRM.CustomFields == nil {
		s.CRM.CustomFields = make(map[string]string)
	}
	s.CRM.CustomFields[key] = value
}
