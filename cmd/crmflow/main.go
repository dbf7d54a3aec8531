//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Command crmflow serves the conversational workflow engine: it receives CRM
// webhook deliveries and runs each one through the
// enrich/classify/plan/act pipeline.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trpc.group/trpc-go/trpc-crmflow-go/config"
	"trpc.group/trpc-go/trpc-crmflow-go/crm"
	openaigen "trpc.group/trpc-go/trpc-crmflow-go/llm/openai"
	"trpc.group/trpc-go/trpc-crmflow-go/log"
	"trpc.group/trpc-go/trpc-crmflow-go/server"
	"trpc.group/trpc-go/trpc-crmflow-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow/checkpoint/inmemory"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow/checkpoint/sqlite"
	"trpc.group/trpc-go/trpc-crmflow-go/workflow/node"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		clean, err := trace.Start(context.Background(),
			trace.WithEndpoint(endpoint),
			trace.WithServiceName("crmflow"))
		if err != nil {
			log.Warnf("tracing disabled: %v", err)
		} else {
			defer func() {
				if err := clean(); err != nil {
					log.Warnf("trace shutdown: %v", err)
				}
			}()
		}
	}

	saver, err := newSaver(cfg)
	if err != nil {
		log.Fatalf("open checkpoint store: %v", err)
	}
	defer saver.Close()

	executor, err := newExecutor(cfg, saver)
	if err != nil {
		log.Fatalf("build workflow: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(executor).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("crmflow listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Infof("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

// newSaver picks SQLite persistence when a checkpoint path is configured,
// in-memory otherwise.
func newSaver(cfg *config.Config) (workflow.Saver, error) {
	if cfg.CheckpointPath == "" {
		log.Infof("checkpoints held in memory; set CRMFLOW_CHECKPOINT_PATH to persist across restarts")
		return inmemory.NewSaver(), nil
	}
	log.Infof("checkpoints persisted at %s", cfg.CheckpointPath)
	return sqlite.Open(cfg.CheckpointPath)
}

// newExecutor assembles the stage nodes into a compiled graph and wraps it in
// an executor.
func newExecutor(cfg *config.Config, saver workflow.Saver) (*workflow.Executor, error) {
	crmClient := crm.New(cfg.CRMAPIKey,
		crm.WithBaseURL(cfg.CRMBaseURL),
		crm.WithAPIVersion(cfg.CRMAPIVersion),
		crm.WithLocationID(cfg.CRMLocationID),
	)

	opts := []node.Option{node.WithDefaultLocationID(cfg.CRMLocationID)}
	if cfg.LLMEnabled() {
		opts = append(opts,
			node.WithGenerator(openaigen.New(cfg.ClassifierModel, openaigen.WithAPIKey(cfg.OpenAIAPIKey))),
			node.WithResponderGenerator(openaigen.New(cfg.ResponderModel, openaigen.WithAPIKey(cfg.OpenAIAPIKey))),
		)
	} else {
		log.Warnf("OPENAI_API_KEY is not set; running in degraded mode with heuristic classification")
	}
	graph, err := node.BuildGraph(node.New(crmClient, opts...))
	if err != nil {
		return nil, err
	}
	return workflow.NewExecutor(graph, saver)
}
