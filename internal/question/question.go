// Package question loads grading units: an opaque id plus starter and
// solution file sets. Fixtures are JSON documents validated against a
// schema before use.
package question

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abhisek/rendermark/internal/fileset"
)

// Unit is one grading unit. The solution FileSet is immutable per
// question; graders clone the starter set for the user-editable copy.
type Unit struct {
	ID        string
	Title     string
	MultiFile bool
	Starter   *fileset.FileSet
	Solution  *fileset.FileSet
}

// document mirrors the fixture JSON layout.
type document struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	MultiFile bool    `json:"multi_file"`
	Starter   sideDoc `json:"starter"`
	Solution  sideDoc `json:"solution"`
}

type sideDoc struct {
	Entry string            `json:"entry"`
	Files map[string]string `json:"files"`
}

// Load reads and validates one fixture file.
func Load(path string) (*Unit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw fixture JSON and builds the Unit.
func Parse(raw []byte) (*Unit, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	starter, err := buildSide(doc.Starter)
	if err != nil {
		return nil, fmt.Errorf("starter: %w", err)
	}
	solution, err := buildSide(doc.Solution)
	if err != nil {
		return nil, fmt.Errorf("solution: %w", err)
	}
	return &Unit{
		ID:        doc.ID,
		Title:     doc.Title,
		MultiFile: doc.MultiFile,
		Starter:   starter,
		Solution:  solution,
	}, nil
}

func buildSide(side sideDoc) (*fileset.FileSet, error) {
	entry := side.Entry
	if entry == "" {
		// Conventionally the first file is the entry.
		names := make([]string, 0, len(side.Files))
		for name := range side.Files {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) == 0 {
			return nil, fmt.Errorf("no files")
		}
		entry = names[0]
	}
	return fileset.FromFiles(entry, side.Files)
}

// LoadDir loads every .json fixture under dir, sorted by id.
func LoadDir(dir string) ([]*Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixture dir: %w", err)
	}
	var units []*Unit
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		u, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}
