// Package transpile converts embedded JSX markup into nested
// React.createElement calls. It rewrites at the AST level using the
// tree-sitter javascript grammar, which parses JSX natively, and splices
// the generated calls back into the surrounding source by byte range.
package transpile

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Error is a compile-time failure of the markup transpiler. Callers
// classify it as a compile failure for the current run; it must never
// crash the host.
type Error struct {
	Line   uint32
	Column uint32
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transpile: %s at line %d, column %d", e.Msg, e.Line+1, e.Column+1)
}

// Transpile rewrites all JSX in src into element-construction calls.
// The transform is purely syntactic; no semantic or type checking.
func Transpile(ctx context.Context, src string) (string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	source := []byte(src)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return "", &Error{Msg: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if bad := firstErrorNode(root); bad != nil {
			p := bad.StartPoint()
			msg := "unexpected token"
			if bad.IsMissing() {
				msg = "missing " + bad.Type()
			}
			return "", &Error{Line: p.Row, Column: p.Column, Msg: msg}
		}
		return "", &Error{Msg: "syntax error"}
	}

	return splice(root, source), nil
}

// firstErrorNode returns the first ERROR or missing node in the tree.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

func isJSX(n *sitter.Node) bool {
	switch n.Type() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	}
	return false
}

// splice reproduces n's source text with every JSX subtree replaced by
// its generated call expression.
func splice(n *sitter.Node, src []byte) string {
	if isJSX(n) {
		return emitJSX(n, src)
	}
	count := int(n.ChildCount())
	if count == 0 {
		return n.Content(src)
	}
	var b strings.Builder
	cursor := n.StartByte()
	for i := 0; i < count; i++ {
		child := n.Child(i)
		b.Write(src[cursor:child.StartByte()])
		b.WriteString(splice(child, src))
		cursor = child.EndByte()
	}
	b.Write(src[cursor:n.EndByte()])
	return b.String()
}

// emitJSX converts one JSX node into a React.createElement call.
func emitJSX(n *sitter.Node, src []byte) string {
	var tag, props string
	var children []string

	switch n.Type() {
	case "jsx_self_closing_element":
		tag = tagExpr(n.ChildByFieldName("name"), src)
		props = propsExpr(n, src)
	case "jsx_fragment":
		tag = "React.Fragment"
		props = "null"
		children = childExprs(n, src)
	default: // jsx_element
		opening := n.NamedChild(0)
		name := opening.ChildByFieldName("name")
		tag = tagExpr(name, src)
		props = propsExpr(opening, src)
		children = childExprs(n, src)
	}

	parts := append([]string{tag, props}, children...)
	return "React.createElement(" + strings.Join(parts, ", ") + ")"
}

// tagExpr renders the element type argument. Lowercase plain
// identifiers are intrinsic tags and become string literals; everything
// else (capitalized components, member expressions) is a reference.
func tagExpr(name *sitter.Node, src []byte) string {
	if name == nil {
		return "React.Fragment"
	}
	text := name.Content(src)
	if name.Type() == "identifier" && text != "" && text[0] >= 'a' && text[0] <= 'z' {
		return jsString(text)
	}
	return text
}

// propsExpr renders the attributes of an opening or self-closing
// element as an object literal, or an Object.assign chain when spread
// attributes are present. Returns "null" for no attributes.
func propsExpr(opening *sitter.Node, src []byte) string {
	var segments []string // alternating literal groups and spread exprs
	var pending []string  // accumulated key: value pairs
	hasSpread := false

	flush := func() {
		if len(pending) > 0 {
			segments = append(segments, "{"+strings.Join(pending, ", ")+"}")
			pending = nil
		}
	}

	for i := 0; i < int(opening.NamedChildCount()); i++ {
		attr := opening.NamedChild(i)
		switch attr.Type() {
		case "jsx_attribute":
			key, val := attrPair(attr, src)
			pending = append(pending, key+": "+val)
		case "jsx_expression":
			// {...props} spread attribute
			if inner := attr.NamedChild(0); inner != nil && inner.Type() == "spread_element" {
				if expr := inner.NamedChild(0); expr != nil {
					hasSpread = true
					flush()
					segments = append(segments, splice(expr, src))
				}
			}
		}
	}
	flush()

	if len(segments) == 0 {
		return "null"
	}
	if !hasSpread {
		return segments[0]
	}
	return "Object.assign({}, " + strings.Join(segments, ", ") + ")"
}

// attrPair renders one attribute as an object key and value expression.
// A bare attribute is true; an expression container contributes its
// inner expression, re-spliced for nested JSX.
func attrPair(attr *sitter.Node, src []byte) (key, val string) {
	name := attr.NamedChild(0)
	key = name.Content(src)
	if !isIdentKey(key) {
		key = jsString(key)
	}
	val = "true"
	if attr.NamedChildCount() > 1 {
		value := attr.NamedChild(1)
		switch value.Type() {
		case "jsx_expression":
			if inner := value.NamedChild(0); inner != nil {
				val = splice(inner, src)
			}
		default:
			val = value.Content(src)
		}
	}
	return key, val
}

// childExprs renders the children of a jsx_element or jsx_fragment.
func childExprs(n *sitter.Node, src []byte) []string {
	var out []string
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "jsx_opening_element", "jsx_closing_element":
			continue
		case "jsx_text", "html_character_reference":
			if text := jsxText(child.Content(src)); text != "" {
				out = append(out, jsString(text))
			}
		case "jsx_expression":
			inner := child.NamedChild(0)
			if inner == nil || inner.Type() == "comment" {
				continue // {} and {/* comment */} contribute nothing
			}
			out = append(out, splice(inner, src))
		default:
			if isJSX(child) {
				out = append(out, emitJSX(child, src))
			}
		}
	}
	return out
}

// jsxText applies JSX whitespace semantics: interior runs collapse to a
// single space, and leading/trailing whitespace containing a newline is
// dropped entirely.
func jsxText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	leading := raw[:len(raw)-len(strings.TrimLeft(raw, " \t\r\n"))]
	trailing := raw[len(strings.TrimRight(raw, " \t\r\n")):]
	collapsed := strings.Join(strings.Fields(raw), " ")
	if leading != "" && !strings.Contains(leading, "\n") {
		collapsed = " " + collapsed
	}
	if trailing != "" && !strings.Contains(trailing, "\n") {
		collapsed = collapsed + " "
	}
	return collapsed
}

// isIdentKey reports whether s can be an unquoted object key.
func isIdentKey(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '$':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// jsString quotes s as a JavaScript string literal. UTF-8 passes
// through untouched; only characters meaningful inside a double-quoted
// literal are escaped.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
