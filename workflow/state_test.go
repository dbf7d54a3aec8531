//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	assert.Equal(t, ChannelSMS, ParseChannel("sms"))
	assert.Equal(t, ChannelFacebook, ParseChannel("facebook"))
	assert.Equal(t, ChannelInstagram, ParseChannel("instagram"))
	assert.Equal(t, ChannelSMS, ParseChannel("whatsapp"))
	assert.Equal(t, ChannelSMS, ParseChannel(""))
}

func TestKnownIntent(t *testing.T) {
	for _, intent := range []Intent{IntentQualify, IntentPrice, IntentBook, IntentInfo, IntentOutOfScope} {
		assert.True(t, KnownIntent(intent))
	}
	assert.False(t, KnownIntent(""))
	assert.False(t, KnownIntent("complain"))
}

func TestCloneIsDeep(t *testing.T) {
	slot := time.Date(2026, 3, 15, 15, 0, 0, 0, time.UTC)
	s := NewState("c1")
	s.CRM.Tags = []string{"VIP"}
	s.SetCustomField("name", "Ana")
	s.Booking.SelectedSlot = &slot
	s.Booking.ProposedSlots = []time.Time{slot}
	s.AppendTurn(RoleUser, "hola")
	s.Meta = map[string]any{"k": "v"}

	clone := s.Clone()
	clone.CRM.Tags[0] = "changed"
	clone.CRM.CustomFields["name"] = "changed"
	clone.History[0].Content = "changed"
	*clone.Booking.SelectedSlot = slot.Add(time.Hour)
	clone.Meta["k"] = "changed"

	assert.Equal(t, "VIP", s.CRM.Tags[0])
	assert.Equal(t, "Ana", s.CRM.CustomFields["name"])
	assert.Equal(t, "hola", s.History[0].Content)
	assert.Equal(t, slot, *s.Booking.SelectedSlot)
	assert.Equal(t, "v", s.Meta["k"])
}

func TestCloneNil(t *testing.T) {
	var s *State
	assert.Nil(t, s.Clone())
}

func TestStateJSONRoundTrip(t *testing.T) {
	slot := time.Date(2026, 3, 15, 15, 0, 0, 0, time.UTC)
	s := NewState("c1")
	s.Channel = ChannelFacebook
	s.NLP = NLPData{Language: LanguageES, Intent: IntentBook, Priority: 4, Sentiment: SentimentPos}
	s.Planner = PlannerData{NextAction: ActionDone, Rationale: "intent=book routed to book"}
	s.Booking.SelectedSlot = &slot
	s.AppendTurn(RoleUser, "hola")
	s.AppendTurn(RoleAssistant, "¡hola!")

	blob, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(blob, &decoded))
	assert.Equal(t, *s, decoded)
}
