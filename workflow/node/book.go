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
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-crmflow-go/crm"
	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Book proposes a placeholder slot, attempts to create an appointment on the
// location's first calendar, and sends a confirmation. Every upstream
// failure here degrades the outcome (no calendar, no appointment id) without
// aborting the turn; the selected slot is always recorded.
func (n *Nodes) Book(ctx context.Context, s *workflow.State) error {
	calendarID := n.resolveCalendar(ctx, s)

	slot := proposeSlot(n.now())
	s.Booking.ProposedSlots = []time.Time{slot}
	s.Booking.SelectedSlot = &slot

	if calendarID != "" {
		appt, err := n.crm.CreateAppointment(ctx, crm.CreateAppointmentRequest{
			CalendarID: calendarID,
			ContactID:  s.ContactID,
			StartTime:  slot,
		})
		if err != nil {
			log.Warnf("book: appointment create failed for %s: %v", s.ContactID, err)
		} else {
			s.Booking.AppointmentID = appt.ID
		}
	}

	text := bookingMessage(s.NLP.Language, slot, s.Booking.AppointmentID != "")
	n.sendMessage(ctx, s, text)
	s.AppendTurn(workflow.RoleAssistant, text)
	s.Planner.NextAction = workflow.ActionDone
	return nil
}

// resolveCalendar returns the first calendar of the contact's location, or
// empty when the location is unknown, the listing fails, or it is empty.
func (n *Nodes) resolveCalendar(ctx context.Context, s *workflow.State) string {
	locationID := n.locationID(s)
	if locationID == "" {
		return ""
	}
	calendars, err := n.crm.ListCalendars(ctx, locationID)
	if err != nil {
		log.Warnf("book: calendar listing failed for location %s: %v", locationID, err)
		return ""
	}
	if len(calendars) == 0 {
		return ""
	}
	return calendars[0].ID
}

// proposeSlot returns the placeholder slot: 24 hours out, normalized to
// 15:00:00.000 UTC on that day. This is deliberately not an availability
// lookup.
func proposeSlot(now time.Time) time.Time {
	d := now.UTC().Add(24 * time.Hour)
	return time.Date(d.Year(), d.Month(), d.Day(), 15, 0, 0, 0, time.UTC)
}

// bookingMessage composes the confirmation text; the wording depends on
// whether an appointment id was actually obtained.
func bookingMessage(language workflow.Language, slot time.Time, confirmed bool) string {
	when := slot.Format("2006-01-02 15:04")
	if language == workflow.LanguageES {
		if confirmed {
			return fmt.Sprintf("¡Listo! Tu llamada quedó agendada para el %s (UTC). ¡Hablamos pronto!", when)
		}
		return fmt.Sprintf("Te propongo el %s (UTC) para una llamada. Te confirmamos en breve.", when)
	}
	if confirmed {
		return fmt.Sprintf("All set! Your call is booked for %s (UTC). Talk soon!", when)
	}
	return fmt.Sprintf("How about %s (UTC) for a call? We'll confirm shortly.", when)
}
