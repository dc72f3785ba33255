// Package dialect rewrites Markdown heading syntax into a wiki markup dialect.
package dialect

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Name identifies a target wiki dialect.
type Name string

const (
	DokuWiki  Name = "dokuwiki"
	MediaWiki Name = "mediawiki"
)

// Mode selects how '#' characters are rewritten.
type Mode string

const (
	// Literal replaces every '#' in the document, including ones in prose, URLs and code.
	Literal Mode = "literal"
	// Line rewrites only ATX headings ("## Title") at the start of a line and wraps the
	// heading text in the dialect's markers on both sides.
	Line Mode = "line"
)

// OutputExt is the extension of converted documents.
const OutputExt = ".txt"

// ErrUnknownDialect is returned for dialect names other than dokuwiki and mediawiki.
var ErrUnknownDialect = errors.New("unknown wiki dialect")

// ErrUnknownMode is returned for heading modes other than literal and line.
var ErrUnknownMode = errors.New("unknown heading mode")

var headingRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)

// Converter rewrites heading syntax for a single dialect.
type Converter struct {
	name Name
	mode Mode
}

// New returns a Converter for the given dialect and mode. An empty mode means Literal.
func New(name Name, mode Mode) (*Converter, error) {
	switch name {
	case DokuWiki, MediaWiki:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	switch mode {
	case "":
		mode = Literal
	case Literal, Line:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return &Converter{name: name, mode: mode}, nil
}

// Marker returns the string every '#' becomes in Literal mode.
func (c *Converter) Marker() string {
	if c.name == DokuWiki {
		return "======"
	}
	return "="
}

// Convert returns text with its heading syntax rewritten.
func (c *Converter) Convert(text string) string {
	if c.mode == Line {
		return headingRe.ReplaceAllStringFunc(text, c.lineHeading)
	}
	return strings.ReplaceAll(text, "#", c.Marker())
}

func (c *Converter) lineHeading(line string) string {
	m := headingRe.FindStringSubmatch(line)
	level := len(m[1])
	width := level
	if c.name == DokuWiki {
		// DokuWiki counts down: "======" is the top level.
		width = 7 - level
		if width < 2 {
			width = 2
		}
	}
	marker := strings.Repeat("=", width)
	return marker + " " + m[2] + " " + marker
}

// OutputPath returns path with its extension replaced by the plain-text extension.
func OutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + OutputExt
}
