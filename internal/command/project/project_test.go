// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/simpleindex/internal/cli"
	"github.com/google/simpleindex/internal/config"
	"github.com/google/simpleindex/pkg/registry/pypi"
	"github.com/pkg/errors"
)

func testRegistry(t *testing.T) pypi.Registry {
	t.Helper()
	fs := memfs.New()
	for name, content := range map[string]string{
		"foo/index.html": `<a href="foo-1.0.tar.gz">foo-1.0.tar.gz</a><a href="foo-1.1.tar.gz" data-yanked="">foo-1.1.tar.gz</a>`,
		"bar/index.json": `{"meta": {"api-version": "1.1"}, "files": [{"filename": "bar-2.0-py3-none-any.whl", "url": "bar-2.0-py3-none-any.whl"}]}`,
	} {
		if err := util.WriteFile(fs, name, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return pypi.FSRegistry{FS: fs}
}

func TestHandler(t *testing.T) {
	for _, tc := range []struct {
		name    string
		names   []string
		output  string
		want    []string
		wantErr error
	}{
		{
			name:   "single project table",
			names:  []string{"foo"},
			output: "table",
			want:   []string{"foo (api 1.0, 2 files)", "foo-1.0.tar.gz", "foo-1.1.tar.gz", "yanked"},
		},
		{
			name:   "results keep request order",
			names:  []string{"bar", "foo"},
			output: "json",
			want:   []string{`"api-version": "1.1"`, `"filename": "bar-2.0-py3-none-any.whl"`, `"filename": "foo-1.0.tar.gz"`},
		},
		{
			name:    "missing project",
			names:   []string{"foo", "baz"},
			output:  "json",
			wantErr: pypi.ErrNotFound,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Settings: config.Default(), Names: tc.names}
			cfg.Settings.Output = tc.output
			var out, errOut bytes.Buffer
			deps := &Deps{Registry: testRegistry(t), Progress: true}
			deps.SetIO(cli.IO{Out: &out, Err: &errOut})
			_, err := Handler(context.Background(), cfg, deps)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Handler() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Handler() error = %v", err)
			}
			got := out.String()
			last := -1
			for _, s := range tc.want {
				i := strings.Index(got, s)
				if i < 0 {
					t.Fatalf("output missing %q:\n%s", s, got)
				}
				if i < last {
					t.Errorf("%q out of order in:\n%s", s, got)
				}
				last = i
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Settings: config.Default()}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded without names")
	}
	cfg.Names = []string{"foo"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
