package transpile

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTranspileIntrinsicElement(t *testing.T) {
	got, err := Transpile(context.Background(), `const x = <div className="box">Hello</div>;`)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`React.createElement("div"`,
		`className: "box"`,
		`"Hello"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "<div") {
		t.Errorf("markup survived transpilation: %q", got)
	}
}

func TestTranspileComponentReference(t *testing.T) {
	got, err := Transpile(context.Background(), `const x = <Button label="Go" />;`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `React.createElement(Button`) {
		t.Errorf("capitalized tag must stay a reference: %q", got)
	}
	if !strings.Contains(got, `label: "Go"`) {
		t.Errorf("attribute missing: %q", got)
	}
}

func TestTranspileFragment(t *testing.T) {
	got, err := Transpile(context.Background(), `const x = <><p>a</p><p>b</p></>;`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "React.createElement(React.Fragment, null") {
		t.Errorf("fragment not emitted: %q", got)
	}
	if strings.Count(got, `React.createElement("p"`) != 2 {
		t.Errorf("fragment children missing: %q", got)
	}
}

func TestTranspileNestedExpressions(t *testing.T) {
	src := `function App() {
	return <ul>{items.map(i => <li key={i.id}>{i.name}</li>)}</ul>;
}`
	got, err := Transpile(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`React.createElement("ul"`,
		`React.createElement("li"`,
		`key: i.id`,
		`i.name`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestTranspileAttributes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "bare attribute is true",
			src:  `const x = <input disabled />;`,
			want: []string{`disabled: true`},
		},
		{
			name: "expression attribute",
			src:  `const x = <button onClick={handle}>Go</button>;`,
			want: []string{`onClick: handle`},
		},
		{
			name: "spread becomes Object.assign",
			src:  `const x = <div id="a" {...rest} />;`,
			want: []string{`Object.assign({}, `, `id: "a"`, `rest`},
		},
		{
			name: "hyphenated attribute key quoted",
			src:  `const x = <div aria-label="close" />;`,
			want: []string{`"aria-label": "close"`},
		},
		{
			name: "no attributes yields null",
			src:  `const x = <br />;`,
			want: []string{`React.createElement("br", null)`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transpile(context.Background(), tt.src)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
		})
	}
}

func TestTranspilePassThrough(t *testing.T) {
	src := `const add = (a, b) => a + b;
function greet(name) { return "hi " + name; }`
	got, err := Transpile(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if got != src {
		t.Errorf("markup-free source must pass through unchanged:\ngot  %q\nwant %q", got, src)
	}
}

func TestTranspileSyntaxError(t *testing.T) {
	_, err := Transpile(context.Background(), `function App( { return <div>; }`)
	if err == nil {
		t.Fatal("expected error for broken source")
	}
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if !strings.Contains(terr.Error(), "line") {
		t.Errorf("error message lacks position: %q", terr.Error())
	}
}

func TestJSXTextWhitespace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello", "Hello"},
		{"  Hello   world  ", " Hello world "},
		{"\n  Hello\n  ", "Hello"},
		{"\n\t", ""},
		{"a\n b", "a b"},
	}
	for _, tt := range tests {
		if got := jsxText(tt.in); got != tt.want {
			t.Errorf("jsxText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`with "quotes"`, `"with \"quotes\""`},
		{"tab\there", `"tab\there"`},
		{"uni⏎code", `"uni⏎code"`},
	}
	for _, tt := range tests {
		if got := jsString(tt.in); got != tt.want {
			t.Errorf("jsString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
