//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the inbound HTTP surface: a health endpoint and the
// CRM webhook that drives conversation turns.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
)

// Engine runs one conversation turn. *workflow.Executor satisfies it; tests
// substitute a stub.
type Engine interface {
	Run(ctx context.Context, threadID string, input workflow.TurnInput) (*workflow.State, error)
}

// Server routes webhook deliveries into the workflow engine.
type Server struct {
	engine Engine
	router *mux.Router
}

// Option configures the Server instance.
type Option func(*Server)

// New creates the HTTP server around the given engine.
func New(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		router: mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/webhooks/ghl", s.handleWebhook).Methods(http.MethodPost)
	s.router.HandleFunc("/webhooks/ghl", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodOptions)
}

// webhookPayload accepts both the snake_case and camelCase field names the
// upstream provider uses across webhook versions. The first non-empty
// alternative wins.
type webhookPayload struct {
	ContactID       string `json:"contact_id"`
	ContactIDAlt    string `json:"contactId"`
	Message         string `json:"message"`
	Text            string `json:"text"`
	Body            string `json:"body"`
	Channel         string `json:"channel"`
	Type            string `json:"type"`
	ConversationID  string `json:"conversation_id"`
	ConversationAlt string `json:"conversationId"`
}

func (p *webhookPayload) contactID() string {
	return firstNonEmpty(p.ContactID, p.ContactIDAlt)
}

func (p *webhookPayload) text() string {
	return firstNonEmpty(p.Message, p.Text, p.Body)
}

func (p *webhookPayload) channel() workflow.Channel {
	return workflow.ParseChannel(strings.ToLower(firstNonEmpty(p.Channel, p.Type)))
}

func (p *webhookPayload) conversationID() string {
	return firstNonEmpty(p.ConversationID, p.ConversationAlt)
}

// turnResponse is the webhook reply body.
type turnResponse struct {
	Status        string `json:"status"`
	NextAction    string `json:"next_action"`
	Language      string `json:"language"`
	Intent        string `json:"intent"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	contactID := payload.contactID()
	if contactID == "" {
		http.Error(w, "contact id is required", http.StatusBadRequest)
		return
	}

	state, err := s.engine.Run(r.Context(), contactID, workflow.TurnInput{
		ContactID:      contactID,
		LatestText:     payload.text(),
		Channel:        payload.channel(),
		ConversationID: payload.conversationID(),
	})
	if err != nil {
		log.Errorf("webhook turn failed for contact %s: %v", contactID, err)
		http.Error(w, "turn execution failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, turnResponse{
		Status:        "ok",
		NextAction:    string(state.Planner.NextAction),
		Language:      string(state.NLP.Language),
		Intent:        string(state.NLP.Intent),
		AppointmentID: state.Booking.AppointmentID,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
