// Package compare recursively diffs two rendered element trees into a
// typed, severity-tagged diff list and a lenient equality verdict.
package compare

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Severity classifies one diff; it drives both the equality verdict and
// the aggregator's penalty weight.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Kind names the compared aspect a diff was produced from.
type Kind string

const (
	KindTagName        Kind = "tagName"
	KindTextContent    Kind = "textContent"
	KindAttribute      Kind = "attribute"
	KindChildrenCount  Kind = "childrenCount"
	KindChildStructure Kind = "childStructure"
)

// Diff is one discrepancy between two compared subtrees. Immutable once
// returned.
type Diff struct {
	Kind       Kind
	Severity   Severity
	Expected   string
	Actual     string
	Attribute  string
	Index      int
	Children   []Diff
	Similarity float64
}

// Result is the comparator's verdict. Equal holds exactly when no diff
// is high severity and at most two diffs were produced — minor cosmetic
// mismatches do not fail a structurally sound submission.
type Result struct {
	Equal bool
	Diffs []Diff
}

// comparedAttributes is the fixed attribute set checked on every
// element pair.
var comparedAttributes = []string{"id", "class", "type", "href", "src", "role", "aria-label"}

// childCountTolerance is the allowed element-child count difference
// before a childrenCount diff is emitted.
const childCountTolerance = 1

// Text-similarity thresholds: below reportThreshold a diff is emitted,
// below highThreshold it is high severity.
const (
	reportThreshold = 0.8
	highThreshold   = 0.5
)

// Compare diffs the reference tree (expected) against the user tree
// (actual).
func Compare(expected, actual *html.Node) Result {
	diffs := compareNodes(expected, actual)
	return Result{Equal: verdict(diffs), Diffs: diffs}
}

func verdict(diffs []Diff) bool {
	for _, d := range diffs {
		if d.Severity == SeverityHigh {
			return false
		}
	}
	return len(diffs) <= 2
}

func compareNodes(expected, actual *html.Node) []Diff {
	// Lenient guard: anything that is not an element pair is trivially
	// equal.
	if expected == nil || actual == nil ||
		expected.Type != html.ElementNode || actual.Type != html.ElementNode {
		return nil
	}

	// Fast path: serialized forms match exactly.
	if expected == actual || outerHTML(expected) == outerHTML(actual) {
		return nil
	}

	var diffs []Diff

	if !strings.EqualFold(expected.Data, actual.Data) {
		diffs = append(diffs, Diff{
			Kind:     KindTagName,
			Severity: SeverityHigh,
			Expected: expected.Data,
			Actual:   actual.Data,
		})
	}

	expText := NormalizeText(TextContent(expected))
	actText := NormalizeText(TextContent(actual))
	if expText != "" && actText != "" && expText != actText {
		sim := TextSimilarity(expText, actText)
		if sim < reportThreshold {
			severity := SeverityLow
			if sim < highThreshold {
				severity = SeverityHigh
			}
			diffs = append(diffs, Diff{
				Kind:       KindTextContent,
				Severity:   severity,
				Expected:   expText,
				Actual:     actText,
				Similarity: sim,
			})
		}
	}

	for _, name := range comparedAttributes {
		expVal, expOK := attr(expected, name)
		actVal, actOK := attr(actual, name)
		if !expOK && !actOK {
			continue
		}
		// Presence counts: an attribute defined empty on one side and
		// absent on the other is still a mismatch.
		if expVal != actVal || expOK != actOK {
			severity := SeverityMedium
			if name == "id" {
				severity = SeverityHigh
			}
			diffs = append(diffs, Diff{
				Kind:      KindAttribute,
				Severity:  severity,
				Attribute: name,
				Expected:  expVal,
				Actual:    actVal,
			})
		}
	}

	expChildren := elementChildren(expected)
	actChildren := elementChildren(actual)
	if delta := len(expChildren) - len(actChildren); delta > childCountTolerance || delta < -childCountTolerance {
		diffs = append(diffs, Diff{
			Kind:     KindChildrenCount,
			Severity: SeverityMedium,
			Expected: strconv.Itoa(len(expChildren)),
			Actual:   strconv.Itoa(len(actChildren)),
		})
	}

	limit := len(expChildren)
	if len(actChildren) < limit {
		limit = len(actChildren)
	}
	for i := 0; i < limit; i++ {
		childDiffs := compareNodes(expChildren[i], actChildren[i])
		if verdict(childDiffs) {
			continue // child is equal under the same leniency rule
		}
		diffs = append(diffs, Diff{
			Kind:     KindChildStructure,
			Severity: SeverityMedium,
			Index:    i,
			Children: childDiffs,
		})
	}

	return diffs
}

// attr returns an attribute value and whether the element defines it.
func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// elementChildren returns direct children that are elements, excluding
// text and whitespace nodes.
func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// TextContent concatenates all descendant text.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func outerHTML(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

