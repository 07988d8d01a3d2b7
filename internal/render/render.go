// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package render prints normalized project pages for the terminal.
package render

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/simpleindex/pkg/registry/pypi/simple"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	JSON  = "json"
	YAML  = "yaml"
	Table = "table"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Project is a page and the name it was requested by.
type Project struct {
	Name string
	Info *simple.ProjectInfo
}

// Projects writes each project in the given format. JSON and YAML emit one
// document per project.
func Projects(w io.Writer, format string, projects []Project) error {
	switch format {
	case JSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		e.SetEscapeHTML(false)
		for _, p := range projects {
			if err := e.Encode(p.Info); err != nil {
				return errors.Wrapf(err, "encoding %s", p.Name)
			}
		}
	case YAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		for _, p := range projects {
			if err := e.Encode(p.Info); err != nil {
				return errors.Wrapf(err, "encoding %s", p.Name)
			}
		}
		return e.Close()
	case Table:
		for i, p := range projects {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := table(w, p); err != nil {
				return err
			}
		}
	default:
		return errors.Errorf("unsupported output %q", format)
	}
	return nil
}

func table(w io.Writer, p Project) error {
	fmt.Fprintf(w, "%s (api %s, %d files)\n", bold(p.Name), p.Info.Meta.Version, len(p.Info.Files))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tKIND\tVERSION\tSHA256\tREQUIRES-PYTHON\tMETADATA\tYANKED")
	for _, f := range p.Info.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Filename, f.Filename.Kind, f.Filename.Version, shortDigest(f.Hashes),
			orDash(f.RequiresPython), metadata(f.DistInfoMetadata), yanked(f.Yanked))
	}
	return errors.Wrap(tw.Flush(), "writing table")
}

func shortDigest(h *simple.ArtifactHashes) string {
	if h == nil || h.SHA256 == nil {
		return "-"
	}
	return hex.EncodeToString(h.SHA256)[:12]
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func metadata(m simple.DistInfoMetadata) string {
	switch {
	case !m.Available:
		return "no"
	case m.Hashes.SHA256 != nil:
		return "sha256:" + hex.EncodeToString(m.Hashes.SHA256)[:12]
	case m.Hashes.MD5 != nil:
		return "md5:" + hex.EncodeToString(m.Hashes.MD5)[:12]
	default:
		return "yes"
	}
}

func yanked(y simple.Yanked) string {
	switch {
	case !y.Yanked:
		return "-"
	case y.Reason == nil || strings.TrimSpace(*y.Reason) == "":
		return red("yanked")
	default:
		return red("yanked: ") + yellow(*y.Reason)
	}
}

// Names writes a root listing in the given format.
func Names(w io.Writer, format string, names []string) error {
	switch format {
	case JSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		e.SetEscapeHTML(false)
		return errors.Wrap(e.Encode(names), "encoding names")
	case YAML:
		e := yaml.NewEncoder(w)
		if err := e.Encode(names); err != nil {
			return errors.Wrap(err, "encoding names")
		}
		return e.Close()
	case Table:
		for _, n := range names {
			if _, err := fmt.Fprintln(w, n); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("unsupported output %q", format)
	}
}
