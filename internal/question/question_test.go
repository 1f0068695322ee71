package question

import (
	"os"
	"path/filepath"
	"testing"
)

const validFixture = `{
	"id": "counter-01",
	"title": "Click counter",
	"multi_file": false,
	"starter": {
		"entry": "App.jsx",
		"files": {"App.jsx": "function App() {}"}
	},
	"solution": {
		"entry": "App.jsx",
		"files": {"App.jsx": "function App() { return null; }"}
	}
}`

func TestParseValid(t *testing.T) {
	u, err := Parse([]byte(validFixture))
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "counter-01" || u.Title != "Click counter" || u.MultiFile {
		t.Errorf("unit header = %+v", u)
	}
	if u.Starter.Entry() != "App.jsx" || u.Solution.Entry() != "App.jsx" {
		t.Errorf("entries = %q, %q", u.Starter.Entry(), u.Solution.Entry())
	}
	if src, ok := u.Solution.Get("App.jsx"); !ok || src == "" {
		t.Error("solution source missing")
	}
}

func TestParseDefaultsEntryToFirstFile(t *testing.T) {
	u, err := Parse([]byte(`{
		"id": "q",
		"starter": {"files": {"b.jsx": "", "a.jsx": ""}},
		"solution": {"files": {"main.jsx": "x"}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := u.Starter.Entry(); got != "a.jsx" {
		t.Errorf("defaulted entry = %q, want a.jsx", got)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not JSON", `{`},
		{"missing id", `{"starter": {"files": {"a": ""}}, "solution": {"files": {"a": ""}}}`},
		{"empty id", `{"id": "", "starter": {"files": {"a": ""}}, "solution": {"files": {"a": ""}}}`},
		{"missing solution", `{"id": "q", "starter": {"files": {"a": ""}}}`},
		{"empty files", `{"id": "q", "starter": {"files": {}}, "solution": {"files": {"a": ""}}}`},
		{"unknown field", `{"id": "q", "extra": 1, "starter": {"files": {"a": ""}}, "solution": {"files": {"a": ""}}}`},
		{"non-string source", `{"id": "q", "starter": {"files": {"a": 5}}, "solution": {"files": {"a": ""}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseEntryNotInFiles(t *testing.T) {
	_, err := Parse([]byte(`{
		"id": "q",
		"starter": {"entry": "missing.jsx", "files": {"a.jsx": ""}},
		"solution": {"files": {"a.jsx": ""}}
	}`))
	if err == nil {
		t.Error("expected error for entry outside files")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, id string) {
		t.Helper()
		doc := `{"id": "` + id + `", "starter": {"files": {"a.jsx": ""}}, "solution": {"files": {"a.jsx": "x"}}}`
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("two.json", "q2")
	write("one.json", "q1")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	units, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("loaded %d units, want 2", len(units))
	}
	if units[0].ID != "q1" || units[1].ID != "q2" {
		t.Errorf("units not sorted by id: %s, %s", units[0].ID, units[1].ID)
	}
}

func TestLoadDirReportsBadFixture(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"id": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Error("expected error for invalid fixture")
	}
}
