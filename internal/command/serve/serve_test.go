// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/google/simpleindex/internal/cli"
	"github.com/google/simpleindex/internal/urlx"
	"github.com/google/simpleindex/pkg/registry/pypi"
	"github.com/rs/zerolog"
)

func testMirror(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for name, content := range map[string]string{
		"index.html":     `<a href="foo/">foo</a>`,
		"foo/index.html": `<a href="foo-1.0.tar.gz">foo-1.0.tar.gz</a>`,
	} {
		if err := util.WriteFile(fs, name, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Dir: "mirror", Addr: "localhost:8081"}, false},
		{Config{Dir: "mirror", Addr: ":0"}, false},
		{Config{Addr: "localhost:8081"}, true},
		{Config{Dir: "mirror", Addr: "8081"}, true},
	} {
		if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tc.cfg, err, tc.wantErr)
		}
	}
}

func TestNewHandler(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)
	srv := httptest.NewServer(NewHandler(testMirror(t), &log))
	defer srv.Close()
	r := pypi.HTTPRegistry{Client: srv.Client(), IndexURL: urlx.MustParse(srv.URL)}
	names, err := r.Index(context.Background())
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if diff := cmp.Diff([]string{"foo"}, names); diff != "" {
		t.Errorf("Index() mismatch (-want +got):\n%s", diff)
	}
	if _, err := r.Project(context.Background(), "missing"); err == nil {
		t.Error("Project(missing) succeeded")
	}
	for _, want := range []string{`"path":"/"`, `"status":200`, `"path":"/missing/"`, `"status":404`} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %s:\n%s", want, logs.String())
		}
	}
}

func TestHandlerShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addrs := make(chan net.Addr, 1)
	deps := &Deps{FS: testMirror(t), Listening: func(a net.Addr) { addrs <- a }}
	deps.SetIO(cli.IO{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
	done := make(chan error, 1)
	go func() {
		_, err := Handler(ctx, Config{Dir: "mirror", Addr: "127.0.0.1:0"}, deps)
		done <- err
	}()
	addr := <-addrs
	resp, err := http.Get("http://" + addr.String() + "/foo/")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Handler() error = %v", err)
	}
}
