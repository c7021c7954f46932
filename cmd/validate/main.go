// Command validate smoke-checks the endpoints of a running MyFinance server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fanzirfan/MyFinance/internal/version"
)

type endpoint struct {
	path        string
	method      string
	contentType string
	contains    []string
	// auth endpoints are only checked when a bearer token is given
	auth bool
}

var endpoints = []endpoint{
	// Public
	{path: "/api/health", method: "GET", contentType: "application/json", contains: []string{`"status":"ok"`}},
	{path: "/api/telegram/webhook", method: "GET", contentType: "application/json", contains: []string{"Webhook is active"}},

	// Authenticated
	{path: "/api/wallets", method: "GET", contentType: "application/json", contains: []string{`"wallets"`, `"total"`}, auth: true},
	{path: "/api/wallets/reconcile", method: "GET", contentType: "application/json", contains: []string{`"consistent"`}, auth: true},
	{path: "/api/categories", method: "GET", contentType: "application/json", contains: []string{`"Lainnya"`}, auth: true},
	{path: "/api/transactions?limit=5", method: "GET", contentType: "application/json", auth: true},
	{path: "/api/dashboard?period=week", method: "GET", contentType: "application/json", contains: []string{`"monthly_trend"`}, auth: true},
	{path: "/api/dashboard?period=year", method: "GET", contentType: "application/json", contains: []string{`"balance"`}, auth: true},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	token := flag.String("token", os.Getenv("MYFIN_TOKEN"), "Bearer token for authenticated endpoints")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	var selected []endpoint
	for _, ep := range endpoints {
		if ep.auth && *token == "" {
			continue
		}
		selected = append(selected, ep)
	}
	if len(selected) < len(endpoints) {
		fmt.Println("No -token given, skipping authenticated endpoints")
	}
	fmt.Printf("Testing %d endpoints...\n\n", len(selected))

	var passed, failed int
	var results []result

	for _, ep := range selected {
		r := validateEndpoint(client, *url, ep, *token)
		results = append(results, r)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		} else if r.status != http.StatusOK {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected 200)\n", r.status)
		} else {
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint, token string) result {
	start := time.Now()

	req, err := http.NewRequest(ep.method, baseURL+ep.path, nil)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", version.Get().UserAgent())
	if ep.auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	duration := time.Since(start)

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: duration,
		body:     string(body),
	}

	// Validate content type
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	// Validate JSON if expected
	if ep.contentType == "application/json" {
		var js interface{}
		if err := json.Unmarshal(body, &js); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
	}

	// Validate required content
	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
