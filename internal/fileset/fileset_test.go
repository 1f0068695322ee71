package fileset

import (
	"reflect"
	"testing"
)

func TestFromFilesRequiresEntry(t *testing.T) {
	_, err := FromFiles("App.jsx", map[string]string{"Button.jsx": "x"})
	if err == nil {
		t.Fatal("expected error for missing entry file")
	}
}

func TestNamesEntryFirst(t *testing.T) {
	fs, err := FromFiles("App.jsx", map[string]string{
		"Button.jsx": "b",
		"App.jsx":    "a",
		"Card.jsx":   "c",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"App.jsx", "Button.jsx", "Card.jsx"}
	if got := fs.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if got := fs.Siblings(); !reflect.DeepEqual(got, []string{"Button.jsx", "Card.jsx"}) {
		t.Errorf("Siblings() = %v", got)
	}
}

func TestSetPreservesOrder(t *testing.T) {
	fs := New("App.jsx", "a")
	fs.Set("Button.jsx", "b")
	fs.Set("App.jsx", "a2")
	want := []string{"App.jsx", "Button.jsx"}
	if got := fs.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if src, _ := fs.Get("App.jsx"); src != "a2" {
		t.Errorf("Get(App.jsx) = %q, want %q", src, "a2")
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  bool
	}{
		{"blank entry", map[string]string{"App.jsx": ""}, true},
		{"whitespace only", map[string]string{"App.jsx": "  \n\t "}, true},
		{"one non-empty sibling", map[string]string{"App.jsx": "", "B.jsx": "x"}, false},
		{"code present", map[string]string{"App.jsx": "const a = 1;"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := FromFiles("App.jsx", tt.files)
			if err != nil {
				t.Fatal(err)
			}
			if got := fs.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := New("App.jsx", "original")
	clone := orig.Clone()
	clone.Set("App.jsx", "edited")
	clone.Set("Extra.jsx", "new")

	if src, _ := orig.Get("App.jsx"); src != "original" {
		t.Errorf("original mutated: %q", src)
	}
	if orig.Len() != 1 {
		t.Errorf("original Len() = %d, want 1", orig.Len())
	}
}

func TestBasename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Button.jsx", "Button"},
		{"components/Button.jsx", "Button"},
		{"./lib/util.js", "util"},
		{"App", "App"},
	}
	for _, tt := range tests {
		if got := Basename(tt.in); got != tt.want {
			t.Errorf("Basename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
