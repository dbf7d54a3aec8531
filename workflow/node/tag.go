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
	"sort"

	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Tag merges a language tag and an intent tag into the contact's tag set,
// deduplicates, sorts for deterministic output, and submits the full set
// upstream. The computed set is written to local state even when the
// upstream write fails: local state records intended tags, and checkpoint
// consumers read it that way, so the optimistic write is deliberate.
func (n *Nodes) Tag(ctx context.Context, s *workflow.State) error {
	langTag := "English"
	if s.NLP.Language == workflow.LanguageES {
		langTag = "Spanish"
	}

	seen := make(map[string]struct{})
	var tags []string
	add := func(tag string) {
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	for _, tag := range s.CRM.Tags {
		add(tag)
	}
	add(langTag)
	if s.NLP.Intent != "" {
		add("intent:" + string(s.NLP.Intent))
	}
	sort.Strings(tags)

	if err := n.crm.AssignTags(ctx, s.ContactID, tags); err != nil {
		log.Warnf("tag: upstream assign failed for %s, keeping local tag set: %v", s.ContactID, err)
	}
	s.CRM.Tags = tags
	s.Planner.NextAction = workflow.ActionDone
	return nil
}
