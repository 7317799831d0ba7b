// Package pagerange turns human-entered page specifications such as
// "1-3,5" into zero-based page index sequences.
//
// A specification is a comma separated list of tokens. Each token is either
// a single 1-based page number or an inclusive hyphen range of 1-based page
// numbers. The literal "all" is not understood by Resolve; callers check for
// it with IsAll (or use Select, which does).
package pagerange

import (
	"fmt"
	"strconv"
	"strings"
)

// All is the page specification that selects every page of a document.
const All = "all"

// MaxIndices bounds how many indices one specification may resolve to.
const MaxIndices = 1 << 20

// PageRange is one token of a page specification in 1-based page numbers.
// A single page has Start == End.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of pages the range covers.
func (r PageRange) Len() int {
	return r.End - r.Start + 1
}

// String renders the range back into specification form.
func (r PageRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParseError reports a malformed page specification token.
type ParseError struct {
	Spec   string // the whole specification
	Token  string // the offending token, trimmed
	Index  int    // zero-based token position
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid page specification %q: token %d (%q): %s", e.Spec, e.Index+1, e.Token, e.Reason)
}

// RangeError reports a resolved page index that does not exist in the
// document it is applied to.
type RangeError struct {
	Index     int // zero-based
	PageCount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("page %d does not exist (document has %d pages)", e.Index+1, e.PageCount)
}

// IsAll reports whether spec is the literal "all".
func IsAll(spec string) bool {
	return strings.EqualFold(strings.TrimSpace(spec), All)
}

// Parse splits spec into its ranges, in token order.
// Any malformed token fails the whole parse.
func Parse(spec string) ([]PageRange, error) {
	tokens := strings.Split(spec, ",")
	ranges := make([]PageRange, 0, len(tokens))

	for i, raw := range tokens {
		token := strings.TrimSpace(raw)
		fail := func(reason string) error {
			return &ParseError{Spec: spec, Token: token, Index: i, Reason: reason}
		}

		if token == "" {
			return nil, fail("empty token")
		}

		if !strings.Contains(token, "-") {
			page, err := parsePage(token)
			if err != nil {
				return nil, fail(err.Error())
			}
			ranges = append(ranges, PageRange{Start: page, End: page})
			continue
		}

		bounds := strings.Split(token, "-")
		if len(bounds) != 2 {
			return nil, fail("range must have exactly one hyphen")
		}
		start, err := parsePage(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fail("range start: " + err.Error())
		}
		end, err := parsePage(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fail("range end: " + err.Error())
		}
		if start > end {
			return nil, fail(fmt.Sprintf("reversed range, start %d is after end %d", start, end))
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
	}

	return ranges, nil
}

func parsePage(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing page number")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a page number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers start at 1, got %d", n)
	}
	return n, nil
}

// Resolve converts spec into zero-based page indices. Tokens keep their order,
// ranges expand ascending and duplicates are preserved. Specifications that
// resolve to more than MaxIndices pages fail with a ParseError.
func Resolve(spec string) ([]int, error) {
	ranges, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	return expand(spec, ranges)
}

// cardinality returns how many indices ranges expand to, failing once the
// total passes MaxIndices
func cardinality(spec string, ranges []PageRange) (int, error) {
	n := 0
	for i, r := range ranges {
		if r.Len() > MaxIndices-n {
			return 0, &ParseError{
				Spec:   spec,
				Token:  r.String(),
				Index:  i,
				Reason: fmt.Sprintf("selection exceeds %d pages", MaxIndices),
			}
		}
		n += r.Len()
	}
	return n, nil
}

func expand(spec string, ranges []PageRange) ([]int, error) {
	total, err := cardinality(spec, ranges)
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, total)
	for _, r := range ranges {
		for page := r.Start; page <= r.End; page++ {
			indices = append(indices, page-1)
		}
	}
	return indices, nil
}

// Check verifies that every index addresses a page of a document with
// pageCount pages.
func Check(indices []int, pageCount int) error {
	for _, idx := range indices {
		if idx < 0 || idx >= pageCount {
			return &RangeError{Index: idx, PageCount: pageCount}
		}
	}
	return nil
}

// Select resolves spec against a document with pageCount pages. An empty
// spec or "all" selects every page in order.
func Select(spec string, pageCount int) ([]int, error) {
	if strings.TrimSpace(spec) == "" || IsAll(spec) {
		indices := make([]int, pageCount)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	ranges, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	// bound every range before expanding so huge ranges fail cheaply
	for _, r := range ranges {
		if r.End > pageCount {
			return nil, &RangeError{Index: max(r.Start, pageCount+1) - 1, PageCount: pageCount}
		}
	}
	return expand(spec, ranges)
}

// PageNumbers converts zero-based indices into 1-based page number strings,
// the form pdfcpu page selections take.
func PageNumbers(indices []int) []string {
	pages := make([]string, len(indices))
	for i, idx := range indices {
		pages[i] = strconv.Itoa(idx + 1)
	}
	return pages
}
