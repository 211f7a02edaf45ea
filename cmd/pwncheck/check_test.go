package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/breachwatch/pwncheck/internal/config"
	"github.com/breachwatch/pwncheck/internal/errors"
)

const breachedSuffix = "1E4C9B93F3F0682250B6CF8331B7EE68FD8" // SHA-1("password") minus the 5BAA6 prefix

func writePasswordFile(t *testing.T, password string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "password.txt")
	if err := os.WriteFile(path, []byte(password+"\n"), 0o600); err != nil {
		t.Fatalf("write password file: %v", err)
	}
	return path
}

func testConfig(apiURL string) *config.Config {
	cfg := config.Defaults()
	cfg.APIURL = apiURL
	return cfg
}

func TestRunCheckBreached(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/range/5BAA6" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(breachedSuffix + ":9545824\r\n"))
	}))
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	count, err := runCheck(context.Background(), &out, testConfig(ts.URL), writePasswordFile(t, "password"), false)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	if count != 9545824 {
		t.Fatalf("count = %d, want 9545824", count)
	}
	if !strings.Contains(out.String(), "count: 9545824") {
		t.Fatalf("expected breach count in output, got %q", out.String())
	}
	// The checked password itself must never be echoed.
	if strings.Contains(out.String(), "password") {
		t.Fatalf("output echoes the password: %q", out.String())
	}
}

func TestRunCheckNotBreached(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n"))
	}))
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	count, err := runCheck(context.Background(), &out, testConfig(ts.URL), writePasswordFile(t, "password"), false)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	if !strings.Contains(out.String(), "not found") {
		t.Fatalf("expected not-found message, got %q", out.String())
	}
}

func TestRunCheckAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	_, err := runCheck(context.Background(), &out, testConfig(ts.URL), writePasswordFile(t, "password"), false)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	code, ok := errors.APIStatusCode(err)
	if !ok || code != http.StatusTooManyRequests {
		t.Fatalf("expected API error with status 429, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no result output on error, got %q", out.String())
	}
}

func TestRunCheckEmptyFileNoNetworkCall(t *testing.T) {
	requested := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	t.Cleanup(ts.Close)

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	var out bytes.Buffer
	_, err := runCheck(context.Background(), &out, testConfig(ts.URL), path, false)
	if !errors.IsInputError(err) {
		t.Fatalf("expected input error for empty file, got %v", err)
	}
	if requested {
		t.Fatal("no network call should be made for an empty password file")
	}
}

func TestRunCheckWithCache(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(breachedSuffix + ":12\r\n"))
	}))
	t.Cleanup(ts.Close)

	cfg := testConfig(ts.URL)
	cfg.CachePath = filepath.Join(t.TempDir(), "ranges.db")
	path := writePasswordFile(t, "password")

	var out bytes.Buffer
	if _, err := runCheck(context.Background(), &out, cfg, path, true); err != nil {
		t.Fatalf("first runCheck: %v", err)
	}
	count, err := runCheck(context.Background(), &out, cfg, path, true)
	if err != nil {
		t.Fatalf("second runCheck: %v", err)
	}
	if count != 12 {
		t.Fatalf("count = %d, want 12", count)
	}
	if requests != 1 {
		t.Fatalf("issued %d requests, want 1 (second check should hit the cache)", requests)
	}
}

func TestPrintHash(t *testing.T) {
	var out bytes.Buffer
	if err := printHash(&out, "password"); err != nil {
		t.Fatalf("printHash: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8",
		"Prefix: 5BAA6",
		"Suffix: " + breachedSuffix,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("printHash output missing %q:\n%s", want, got)
		}
	}
}
