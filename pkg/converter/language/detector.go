// Package language classifies discovered documents by markup language so the
// report can show what was converted.
package language

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Unknown is returned when a document cannot be classified.
const Unknown = "unknown"

// LanguageDetector identifies the markup language of a document from its
// content and file name. Returned identifiers are lowercase ("markdown",
// "html", "text").
type LanguageDetector interface {
	Detect(content []byte, filePath string) (language string, confidence float64, err error)
}

type goEnryDetector struct {
	overrides map[string]string
}

// NewGoEnryDetector returns a LanguageDetector backed by go-enry. overrides maps
// file extensions to language identifiers and wins over detection; keys are
// normalized to a lowercase extension with a leading dot.
func NewGoEnryDetector(overrides map[string]string) LanguageDetector {
	normalized := make(map[string]string, len(overrides))
	for ext, lang := range overrides {
		ext = strings.ToLower(strings.TrimSpace(ext))
		lang = strings.ToLower(strings.TrimSpace(lang))
		if ext == "" || ext == "." || lang == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[ext] = lang
	}
	return &goEnryDetector{overrides: normalized}
}

// Detect implements LanguageDetector. Overrides score 1.0, content plus name
// detection 0.8, extension-only detection 0.5.
func (d *goEnryDetector) Detect(content []byte, filePath string) (string, float64, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if lang, ok := d.overrides[ext]; ok {
		return lang, 1.0, nil
	}
	if len(content) == 0 {
		return Unknown, 0.0, nil
	}

	// enry matches extensions case-sensitively.
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)) + ext
	if lang := enry.GetLanguage(name, content); lang != "" && lang != "Text" {
		return strings.ToLower(lang), 0.8, nil
	}
	if lang, safe := enry.GetLanguageByExtension(name); safe && lang != "" {
		return strings.ToLower(lang), 0.5, nil
	}
	return "text", 0.0, nil
}
