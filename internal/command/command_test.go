// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/simpleindex/internal/config"
	"github.com/google/simpleindex/internal/httpx/httpxtest"
	"github.com/google/simpleindex/internal/urlx"
	"github.com/google/simpleindex/pkg/registry/pypi/simple"
	"github.com/rs/zerolog"
)

type recordingClient struct {
	calls      int
	userAgents []string
}

func (c *recordingClient) Do(req *http.Request) (*http.Response, error) {
	c.calls++
	c.userAgents = append(c.userAgents, req.Header.Get("User-Agent"))
	return httpxtest.Response(http.StatusOK, "text/html", "<a>foo</a>"), nil
}

func TestNewClient(t *testing.T) {
	for _, tc := range []struct {
		name      string
		cache     bool
		interval  time.Duration
		wantCalls int
	}{
		{name: "cached", cache: true, interval: time.Millisecond, wantCalls: 1},
		{name: "uncached", cache: false, wantCalls: 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			base := &recordingClient{}
			cfg := config.Default()
			cfg.UserAgent = "test-agent"
			cfg.Cache = tc.cache
			cfg.MinInterval = config.Duration(tc.interval)
			client, stop := NewClient(base, cfg)
			defer stop()
			for range 2 {
				req, _ := http.NewRequest(http.MethodGet, "https://example.com/simple/", nil)
				resp, err := client.Do(req)
				if err != nil {
					t.Fatalf("Do() error = %v", err)
				}
				resp.Body.Close()
			}
			if base.calls != tc.wantCalls {
				t.Errorf("calls = %d, want %d", base.calls, tc.wantCalls)
			}
			for _, ua := range base.userAgents {
				if ua != "test-agent" {
					t.Errorf("User-Agent = %q, want %q", ua, "test-agent")
				}
			}
		})
	}
}

func TestLogSkips(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())
	info, err := simple.ParseProjectInfoHTML(urlx.MustParse("https://example.com/simple/foo/"), strings.NewReader(`<a href="README.md">x</a>`), LogSkips(ctx))
	if err != nil {
		t.Fatalf("ParseProjectInfoHTML() error = %v", err)
	}
	if len(info.Files) != 0 {
		t.Errorf("Files = %v, want none", info.Files)
	}
	if !strings.Contains(buf.String(), `"href":"README.md"`) || !strings.Contains(buf.String(), "skipping anchor") {
		t.Errorf("log output = %q, want a skip record", buf.String())
	}
}
