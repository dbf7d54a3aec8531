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

	"trpc.group/trpc-go/trpc-crmflow-go/crm"
	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Enrich fetches the upstream contact record and merges it into the state.
// A fetch failure is swallowed: the turn proceeds unenriched.
func (n *Nodes) Enrich(ctx context.Context, s *workflow.State) error {
	if s.CRM.LocationID == "" {
		s.CRM.LocationID = n.defaultLocationID
	}

	contact, err := n.crm.GetContact(ctx, s.ContactID)
	if err != nil {
		log.Warnf("enrich: contact fetch failed for %s, proceeding unenriched: %v", s.ContactID, err)
		return nil
	}

	if tags := normalizeTags(contact); len(tags) > 0 {
		s.CRM.Tags = tags
	}
	if contact.Stage != "" {
		s.CRM.Stage = contact.Stage
	}
	if contact.LocationID != "" && s.CRM.LocationID == "" {
		s.CRM.LocationID = contact.LocationID
	}
	if name := contact.DisplayName(); name != "" {
		s.SetCustomField("name", name)
	}
	if contact.Email != "" {
		s.SetCustomField("email", contact.Email)
	}
	if contact.Phone != "" {
		s.SetCustomField("phone", contact.Phone)
	}
	return nil
}

// normalizeTags flattens the upstream tag representation into a deduplicated
// string sequence, preserving upstream order.
func normalizeTags(contact *crm.Contact) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, tag := range contact.Tags {
		name := tag.Name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags
}
