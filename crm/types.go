//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package crm

import (
	"encoding/json"
	"time"
)

// TagRef is a contact tag as returned by the CRM. The API is inconsistent
// here: some endpoints return bare strings, others objects carrying a name
// field, so decoding accepts both.
type TagRef struct {
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Name = obj.Name
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t TagRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Name)
}

// Contact is an upstream contact record. Only the fields the workflow reads
// are mapped.
type Contact struct {
	ID         string   `json:"id"`
	LocationID string   `json:"locationId,omitempty"`
	FirstName  string   `json:"firstName,omitempty"`
	LastName   string   `json:"lastName,omitempty"`
	Name       string   `json:"contactName,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Stage      string   `json:"stage,omitempty"`
	Tags       []TagRef `json:"tags,omitempty"`
}

// DisplayName returns the best available human name for the contact.
func (c *Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// LocationTag is a tag defined at the location level.
type LocationTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Calendar is a bookable calendar at a location.
type Calendar struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Message types on the conversations API.
const (
	MessageTypeSMS       = "SMS"
	MessageTypeFacebook  = "FB"
	MessageTypeInstagram = "IG"
)

// SendMessageRequest is the payload for sending an outbound message.
type SendMessageRequest struct {
	ContactID string `json:"contactId"`
	Message   string `json:"message"`
	Type      string `json:"type"`
}

// CreateAppointmentRequest is the payload for creating an appointment.
type CreateAppointmentRequest struct {
	CalendarID string    `json:"calendarId"`
	ContactID  string    `json:"contactId"`
	StartTime  time.Time `json:"startTime"`
}

// Appointment is a created appointment.
type Appointment struct {
	ID string `json:"id"`
}
