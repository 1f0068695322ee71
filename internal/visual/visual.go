// Package visual scores the presentational closeness of two rendered
// root elements as a ratio in [0,1]. Styles are resolved from per-tag
// defaults overlaid with inline style declarations; when no style
// information can be resolved at all, the scorer degrades to a
// neutral-high constant so structural comparison dominates grading.
package visual

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/abhisek/rendermark/internal/compare"
)

// NeutralRatio is returned when computed-style inspection is
// unavailable, so a failed inspection never silently zeroes a grade.
const NeutralRatio = 0.8

// layoutProperties carry weight 2; visualProperties carry weight 1.
var (
	layoutProperties = []string{"display", "position", "width", "height", "margin", "padding"}
	visualProperties = []string{"color", "background-color", "font-size", "font-weight", "text-align", "border-radius"}
)

// controlTextThreshold is the similarity above which a matched
// interactive control earns partial credit.
const controlTextThreshold = 0.7

// Similarity computes the weighted visual similarity ratio between the
// reference root (expected) and the user root (actual).
func Similarity(expected, actual *html.Node) float64 {
	if expected == nil || actual == nil ||
		expected.Type != html.ElementNode || actual.Type != html.ElementNode {
		return NeutralRatio
	}

	expStyle := resolveStyle(expected)
	actStyle := resolveStyle(actual)

	var score, total float64

	for _, prop := range layoutProperties {
		total += 2
		score += 2 * propertyScore(prop, expStyle[prop], actStyle[prop])
	}
	for _, prop := range visualProperties {
		total += 1
		score += propertyScore(prop, expStyle[prop], actStyle[prop])
	}

	// Text content.
	total += 1
	expText := compare.NormalizeText(compare.TextContent(expected))
	actText := compare.NormalizeText(compare.TextContent(actual))
	score += compare.TextSimilarity(expText, actText)

	// Tag name.
	total += 1
	if strings.EqualFold(expected.Data, actual.Data) {
		score += 1
	}

	// Element child count, with ±1 tolerance for partial credit.
	total += 1
	expCount := countElementChildren(expected)
	actCount := countElementChildren(actual)
	switch delta := expCount - actCount; {
	case delta == 0:
		score += 1
	case delta == 1 || delta == -1:
		score += 0.5
	}

	// Interactive controls, only when either side has any.
	expControls := interactiveControls(expected)
	actControls := interactiveControls(actual)
	if len(expControls) > 0 || len(actControls) > 0 {
		total += 1
		if len(expControls) == len(actControls) {
			score += 1
		}
		limit := len(expControls)
		if len(actControls) < limit {
			limit = len(actControls)
		}
		for i := 0; i < limit; i++ {
			total += 1
			a := compare.NormalizeText(compare.TextContent(expControls[i]))
			b := compare.NormalizeText(compare.TextContent(actControls[i]))
			sim := compare.TextSimilarity(a, b)
			switch {
			case sim == 1:
				score += 1
			case sim > controlTextThreshold:
				score += 0.5
			}
		}
	}

	if total == 0 {
		return NeutralRatio
	}
	ratio := score / total
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// propertyScore compares one resolved property value pair: 1 for a
// match after canonicalization, 0.5 for sizes within 20%, else 0.
func propertyScore(prop, expVal, actVal string) float64 {
	switch prop {
	case "color", "background-color":
		if CanonicalColor(expVal) == CanonicalColor(actVal) {
			return 1
		}
		return 0
	case "width", "height", "font-size", "border-radius", "margin", "padding":
		return sizeScore(expVal, actVal)
	default:
		if expVal == actVal {
			return 1
		}
		return 0
	}
}

// sizeScore compares two size values: exact pixel-equivalent match is
// full credit, within 20% is half credit. Values that do not parse as
// lengths fall back to string equality.
func sizeScore(expVal, actVal string) float64 {
	expPx, expOK := lengthPx(expVal)
	actPx, actOK := lengthPx(actVal)
	if !expOK || !actOK {
		if expVal == actVal {
			return 1
		}
		return 0
	}
	if expPx == actPx {
		return 1
	}
	larger := expPx
	if actPx > larger {
		larger = actPx
	}
	if larger == 0 {
		return 1
	}
	diff := expPx - actPx
	if diff < 0 {
		diff = -diff
	}
	if diff <= 0.2*larger {
		return 0.5
	}
	return 0
}

// interactiveControls collects descendant buttons, inputs and links in
// document order.
func interactiveControls(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "button", "input", "a":
				out = append(out, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func countElementChildren(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}
