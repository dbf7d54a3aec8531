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
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-crmflow-go/llm"
	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

const classifySystemPrompt = `You classify inbound CRM messages. ` +
	`Reply with a single compact JSON object with exactly these fields: ` +
	`"language" ("es" or "en"), ` +
	`"intent" ("qualify", "price", "book", "info" or "out_of_scope"), ` +
	`"priority" (integer from 1 to 5), ` +
	`"sentiment" ("pos", "neu" or "neg"). ` +
	`No prose, no markdown.`

// Spanish markers for the degraded-mode language heuristic.
var spanishKeywords = []string{
	"hola", "gracias", "quiero", "necesito", "buenas", "ayuda", "por favor",
}

// Booking markers for the degraded-mode intent heuristic.
var bookingKeywords = []string{
	"agendar", "cita", "llamada", "reservar",
	"book", "appointment", "schedule", "call",
}

// Classify fills the NLP fields from the latest inbound text. With a
// generator configured it asks for a compact JSON classification and falls
// back field by field to the deterministic heuristic; without one the
// heuristic is the whole classification.
func (n *Nodes) Classify(ctx context.Context, s *workflow.State) error {
	defaults := classifyHeuristic(s.LatestText)
	if n.generator == nil {
		s.NLP = defaults
		return nil
	}

	raw, err := n.generator.Generate(ctx, []llm.Message{
		llm.System(classifySystemPrompt),
		llm.User(s.LatestText),
	})
	if err != nil {
		log.Warnf("classify: generation failed for %s, using heuristic: %v", s.ContactID, err)
		s.NLP = defaults
		return nil
	}

	obj, ok := extractJSON(raw)
	if !ok {
		log.Warnf("classify: no JSON object in generator output for %s, using heuristic", s.ContactID)
		s.NLP = defaults
		return nil
	}
	s.NLP = workflow.NLPData{
		Language:  coerceLanguage(obj["language"], defaults.Language),
		Intent:    coerceIntent(obj["intent"], defaults.Intent),
		Priority:  coercePriority(obj["priority"]),
		Sentiment: coerceSentiment(obj["sentiment"], defaults.Sentiment),
	}
	return nil
}

// classifyHeuristic is the deterministic degraded-mode classification.
func classifyHeuristic(text string) workflow.NLPData {
	lower := strings.ToLower(text)
	nlp := workflow.NLPData{
		Language:  workflow.LanguageEN,
		Intent:    workflow.IntentQualify,
		Priority:  3,
		Sentiment: workflow.SentimentNeu,
	}
	if containsAny(lower, spanishKeywords) {
		nlp.Language = workflow.LanguageES
	}
	if containsAny(lower, bookingKeywords) {
		nlp.Intent = workflow.IntentBook
	}
	return nlp
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func coerceLanguage(value any, fallback workflow.Language) workflow.Language {
	s, ok := value.(string)
	if !ok || s == "" {
		return fallback
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "es") {
		return workflow.LanguageES
	}
	return workflow.LanguageEN
}

func coerceIntent(value any, fallback workflow.Intent) workflow.Intent {
	s, ok := value.(string)
	if !ok || s == "" {
		return fallback
	}
	intent := workflow.Intent(strings.ToLower(strings.TrimSpace(s)))
	if workflow.KnownIntent(intent) {
		return intent
	}
	return workflow.IntentQualify
}

// coercePriority coerces the raw value to an integer clamped to [1,5];
// non-coercible values default to 3.
func coercePriority(value any) int {
	var p int
	switch v := value.(type) {
	case float64:
		p = int(v)
	case int:
		p = v
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 3
		}
		p = parsed
	default:
		return 3
	}
	if p < 1 {
		return 1
	}
	if p > 5 {
		return 5
	}
	return p
}

// coerceSentiment accepts exact enumeration members first, then falls back
// to prefix matching so free-form output like "positive" still lands.
func coerceSentiment(value any, fallback workflow.Sentiment) workflow.Sentiment {
	s, ok := value.(string)
	if !ok || s == "" {
		return fallback
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(lower, "p"):
		return workflow.SentimentPos
	case strings.HasPrefix(lower, "neu"):
		return workflow.SentimentNeu
	case strings.HasPrefix(lower, "n"):
		return workflow.SentimentNeg
	default:
		return workflow.SentimentNeu
	}
}
