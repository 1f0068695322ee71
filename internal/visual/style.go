package visual

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// pxPerEm approximates em/rem units at the browser default font size.
const pxPerEm = 16

// baseStyle holds the property defaults shared by every element.
var baseStyle = map[string]string{
	"display":          "inline",
	"position":         "static",
	"width":            "auto",
	"height":           "auto",
	"margin":           "0px",
	"padding":          "0px",
	"color":            "rgb(0, 0, 0)",
	"background-color": "transparent",
	"font-size":        "16px",
	"font-weight":      "400",
	"text-align":       "left",
	"border-radius":    "0px",
}

var blockTags = map[string]bool{
	"div": true, "p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "ul": true, "ol": true,
	"li": true, "form": true, "section": true, "article": true,
	"header": true, "footer": true, "main": true, "nav": true,
	"pre": true, "blockquote": true, "table": true, "fieldset": true,
}

var tagOverrides = map[string]map[string]string{
	"button": {"display": "inline-block", "text-align": "center"},
	"input":  {"display": "inline-block"},
	"b":      {"font-weight": "700"},
	"strong": {"font-weight": "700"},
	"h1":     {"font-size": "32px", "font-weight": "700"},
	"h2":     {"font-size": "24px", "font-weight": "700"},
	"h3":     {"font-size": "19px", "font-weight": "700"},
	"h4":     {"font-size": "16px", "font-weight": "700"},
	"h5":     {"font-size": "13px", "font-weight": "700"},
	"h6":     {"font-size": "11px", "font-weight": "700"},
}

// resolveStyle computes the effective style of an element: tag defaults
// overlaid with parsed inline declarations. Both sides resolve through
// the same defaults, so only genuine inline differences separate them.
func resolveStyle(n *html.Node) map[string]string {
	style := make(map[string]string, len(baseStyle))
	for k, v := range baseStyle {
		style[k] = v
	}
	if blockTags[n.Data] {
		style["display"] = "block"
	}
	for k, v := range tagOverrides[n.Data] {
		style[k] = v
	}
	for _, a := range n.Attr {
		if a.Key != "style" {
			continue
		}
		for prop, val := range parseDeclarations(a.Val) {
			style[prop] = val
		}
	}
	return style
}

// parseDeclarations parses inline "prop: value; prop: value" text.
func parseDeclarations(s string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		if prop == "" || val == "" {
			continue
		}
		out[prop] = val
	}
	return out
}

// CanonicalColor normalizes a color value to lowercase #rrggbb hex.
// rgb()/rgba() function forms convert to hex; "transparent" and fully
// transparent rgba are equivalent; named colors map through a small
// table. Unrecognized values pass through lowercased.
func CanonicalColor(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case v == "" || v == "transparent":
		return "transparent"
	case strings.HasPrefix(v, "rgb"):
		return canonicalRGB(v)
	case strings.HasPrefix(v, "#"):
		return canonicalHex(v)
	}
	if hex, ok := namedColors[v]; ok {
		return hex
	}
	return v
}

func canonicalRGB(v string) string {
	open := strings.IndexByte(v, '(')
	end := strings.IndexByte(v, ')')
	if open < 0 || end < open {
		return v
	}
	parts := strings.Split(v[open+1:end], ",")
	if len(parts) < 3 {
		return v
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return v
		}
		rgb[i] = n
	}
	if len(parts) >= 4 {
		alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err == nil && alpha == 0 {
			return "transparent"
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

func canonicalHex(v string) string {
	if len(v) == 4 { // #abc → #aabbcc
		return "#" + strings.Repeat(string(v[1]), 2) +
			strings.Repeat(string(v[2]), 2) +
			strings.Repeat(string(v[3]), 2)
	}
	if len(v) == 9 { // drop alpha channel
		return v[:7]
	}
	return v
}

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
	"pink":    "#ffc0cb",
	"teal":    "#008080",
	"navy":    "#000080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
}

// lengthPx parses a CSS length into its pixel equivalent. em and rem
// approximate at 16px. Returns ok=false for auto, percentages,
// shorthand with several components, and anything else non-numeric.
func lengthPx(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, " %") {
		return 0, false
	}
	switch {
	case strings.HasSuffix(v, "px"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
		return n, err == nil
	case strings.HasSuffix(v, "rem"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "rem"), 64)
		return n * pxPerEm, err == nil
	case strings.HasSuffix(v, "em"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "em"), 64)
		return n * pxPerEm, err == nil
	default:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
}
