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
	"trpc.group/trpc-go/trpc-crmflow-go/llm"
	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Degraded-mode reply templates.
const (
	respondTemplateES = "¡Gracias por tu mensaje! ¿Cuál es tu objetivo principal? " +
		"Si quieres, podemos agendar una llamada breve."
	respondTemplateEN = "Thanks for reaching out! What is your main goal? " +
		"If you like, we can book a quick call."
)

const (
	respondSystemPromptES = "Eres un asistente de ventas cálido y empático. " +
		"Responde en español, en una o dos frases, pregunta el objetivo " +
		"principal del contacto y ofrece agendar una llamada breve."
	respondSystemPromptEN = "You are a warm, empathetic sales assistant. " +
		"Reply in English, in one or two sentences, ask what the contact's " +
		"main goal is, and offer to book a quick call."
)

// Respond drafts a reply and sends it on the conversation's channel. The
// drafted text lands in history whether or not the send succeeded, so the
// checkpoint always shows what was said (or meant to be said).
func (n *Nodes) Respond(ctx context.Context, s *workflow.State) error {
	text := n.draftReply(ctx, s)
	n.sendMessage(ctx, s, text)
	s.AppendTurn(workflow.RoleAssistant, text)
	s.Planner.NextAction = workflow.ActionDone
	return nil
}

// draftReply produces the reply text, falling back to the bilingual
// templates when no generator is configured or generation fails.
func (n *Nodes) draftReply(ctx context.Context, s *workflow.State) string {
	template := respondTemplateEN
	system := respondSystemPromptEN
	if s.NLP.Language == workflow.LanguageES {
		template = respondTemplateES
		system = respondSystemPromptES
	}
	gen := n.responder
	if gen == nil {
		gen = n.generator
	}
	if gen == nil {
		return template
	}
	text, err := gen.Generate(ctx, []llm.Message{
		llm.System(system),
		llm.User(s.LatestText),
	})
	if err != nil || text == "" {
		log.Warnf("respond: generation failed for %s, using template: %v", s.ContactID, err)
		return template
	}
	return text
}

// sendMessage delivers text on the resolved channel, swallowing failures.
func (n *Nodes) sendMessage(ctx context.Context, s *workflow.State, text string) {
	err := n.crm.SendMessage(ctx, crm.SendMessageRequest{
		ContactID: s.ContactID,
		Message:   text,
		Type:      messageType(s.Channel),
	})
	if err != nil {
		log.Warnf("send failed for %s on channel %s: %v", s.ContactID, s.Channel, err)
	}
}
