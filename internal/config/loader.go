// Package config loads the simulation catalogs: events, resolver maps,
// interaction/outcome definitions, trigger schemas, and axis bounds.
// Catalog files are lenient JSON: line and block comments plus trailing
// commas are stripped before decoding, so hand-maintained catalogs can
// carry annotations.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/voxhall/muster/internal/fault"
)

// StripComments removes // and /* */ comments and trailing commas from
// lenient JSON. String literals are respected, including escapes.
// Comments are stripped first so a comma followed by a commented-out
// entry and a closing brace still counts as trailing.
func StripComments(src []byte) []byte {
	return stripTrailingCommas(stripCommentRuns(src))
}

func stripCommentRuns(src []byte) []byte {
	out := make([]byte, 0, len(src))
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == '"':
			// Copy the string literal verbatim.
			out = append(out, c)
			i++
			for i < n {
				out = append(out, src[i])
				if src[i] == '\\' && i+1 < n {
					i++
					out = append(out, src[i])
				} else if src[i] == '"' {
					i++
					break
				}
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
		default:
			out = append(out, c)
			i++
		}
	}
	return out
}

func stripTrailingCommas(src []byte) []byte {
	out := make([]byte, 0, len(src))
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		if c == '"' {
			out = append(out, c)
			i++
			for i < n {
				out = append(out, src[i])
				if src[i] == '\\' && i+1 < n {
					i++
					out = append(out, src[i])
				} else if src[i] == '"' {
					i++
					break
				}
				i++
			}
			continue
		}
		if c == ',' {
			j := i + 1
			for j < n && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j++
			}
			if j < n && (src[j] == '}' || src[j] == ']') {
				i++
				continue
			}
		}
		out = append(out, c)
		i++
	}
	return out
}

// Decode strips comments from src and unmarshals into target. The file
// name is carried into any error for operator diagnosis.
func Decode(file string, src []byte, target any) error {
	if err := json.Unmarshal(StripComments(src), target); err != nil {
		return fault.ConfigFile(file, "", "decode: %v", err)
	}
	return nil
}

// LoadFile reads and decodes one lenient-JSON catalog file.
func LoadFile(path string, target any) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fault.ConfigFile(path, "", "read: %v", err)
	}
	return Decode(filepath.Base(path), src, target)
}

// LoadDir loads the standard catalog set from a directory:
// axes.json, resolvers.json, events.json, interactions.json.
func LoadDir(dir string) (*Catalog, error) {
	var cat Catalog
	files := []struct {
		name   string
		target any
	}{
		{"axes.json", &cat.Axes},
		{"resolvers.json", &cat.Resolvers},
		{"events.json", &cat.Events},
		{"interactions.json", &cat.Domains},
	}
	for _, f := range files {
		if err := LoadFile(filepath.Join(dir, f.name), f.target); err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", f.name, err)
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}
