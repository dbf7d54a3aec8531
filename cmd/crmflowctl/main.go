//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

// Command crmflowctl is a diagnostics tool for operators. It talks to the
// upstream CRM with the same credentials the service uses, and can poll a
// running crmflow instance.
//
// Usage:
//
//	crmflowctl contacts [-limit n]   list contacts at the configured location
//	crmflowctl probe                 check upstream CRM reachability
//	crmflowctl health [-addr host]   poll a running instance's health endpoint
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-crmflow-go/config"
	"trpc.group/trpc-go/trpc-crmflow-go/crm"
)

const commandTimeout = 30 * time.Second

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cfg := config.Load()
	var err error
	switch os.Args[1] {
	case "contacts":
		err = runContacts(ctx, cfg, os.Args[2:])
	case "probe":
		err = runProbe(ctx, cfg)
	case "health":
		err = runHealth(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "crmflowctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: crmflowctl <contacts|probe|health> [flags]")
}

func newClient(cfg *config.Config) *crm.Client {
	return crm.New(cfg.CRMAPIKey,
		crm.WithBaseURL(cfg.CRMBaseURL),
		crm.WithAPIVersion(cfg.CRMAPIVersion),
		crm.WithLocationID(cfg.CRMLocationID),
	)
}

// runContacts lists contacts at the configured location.
func runContacts(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum contacts to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := newClient(cfg).ListContacts(ctx, *limit)
	if err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}
	for _, c := range contacts {
		tags := make([]string, 0, len(c.Tags))
		for _, tag := range c.Tags {
			tags = append(tags, tag.Name)
		}
		fmt.Printf("%s\t%s\t%s\t[%s]\n", c.ID, c.DisplayName(), c.Email, strings.Join(tags, ", "))
	}
	fmt.Printf("%d contact(s)\n", len(contacts))
	return nil
}

// runProbe checks upstream reachability with the cheapest authenticated
// calls: location tags and calendars.
func runProbe(ctx context.Context, cfg *config.Config) error {
	if cfg.CRMAPIKey == "" {
		return fmt.Errorf("GHL_API_KEY is not set")
	}
	if cfg.CRMLocationID == "" {
		return fmt.Errorf("GHL_LOCATION_ID is not set")
	}
	client := newClient(cfg)

	tags, err := client.ListTags(ctx, cfg.CRMLocationID)
	if err != nil {
		return fmt.Errorf("tags endpoint: %w", err)
	}
	fmt.Printf("tags endpoint ok (%d tags)\n", len(tags))

	calendars, err := client.ListCalendars(ctx, cfg.CRMLocationID)
	if err != nil {
		return fmt.Errorf("calendars endpoint: %w", err)
	}
	fmt.Printf("calendars endpoint ok (%d calendars)\n", len(calendars))
	return nil
}

// runHealth polls the health endpoint of a running instance.
func runHealth(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost"+cfg.Addr, "base URL of the running instance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(*addr, "/")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	fmt.Printf("healthy: %s\n", payload["status"])
	return nil
}
