package contract

import (
	"regexp"
	"strings"
)

// DefaultTag marks the contract literal inside a handler's documentation.
const DefaultTag = "@require_type"

// Extractor finds the contract literal declared in handler documentation.
type Extractor struct {
	tag     string
	pattern *regexp.Regexp
}

// NewExtractor builds an Extractor for tag. An empty tag selects DefaultTag.
func NewExtractor(tag string) *Extractor {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = DefaultTag
	}
	return &Extractor{
		tag:     tag,
		pattern: regexp.MustCompile(regexp.QuoteMeta(tag) + `[ \t]+([^*/\s][^\r\n]*)`),
	}
}

// Tag returns the annotation tag this extractor looks for.
func (e *Extractor) Tag() string {
	return e.tag
}

// Extract returns the remainder of the first line carrying the tag. The
// literal is not validated here; ok is false only when the tag is absent.
func (e *Extractor) Extract(doc string) (literal string, ok bool) {
	if doc == "" {
		return "", false
	}

	m := e.pattern.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}

	literal = strings.TrimSpace(m[1])
	literal = strings.TrimSpace(strings.TrimSuffix(literal, "*/"))
	return literal, literal != ""
}
