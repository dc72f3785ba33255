// Package encoding decodes documents to UTF-8 and recognizes content that is not
// text at all.
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

const (
	// sniffLen is the number of bytes used by http.DetectContentType
	sniffLen = 512
	// checkLen is a buffer size used for null byte checks.
	checkLen = 1024
	// Null byte threshold percentage to consider a file binary.
	nullThreshold = 0.15
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

var knownTextMIMEPrefixes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/yaml":       true,
	"application/markdown":   true,
	"image/svg+xml":          true,
}

// Decoded is a document converted to UTF-8.
type Decoded struct {
	Text string
	// Encoding is the IANA name of the source encoding.
	Encoding string
	// Certain reports whether the encoding came from a BOM, a declaration, a
	// configured default, or valid UTF-8 rather than a guess.
	Certain bool
}

// EncodingHandler detects the character encoding of a document, converts it to
// UTF-8, and flags binary content that must not be treated as a document.
type EncodingHandler interface {
	Decode(content []byte) (Decoded, error)
	IsBinary(content []byte) bool
}

type charsetHandler struct {
	defaultEncoding string
}

// NewCharsetHandler returns an EncodingHandler backed by x/net/html/charset.
// defaultEncoding is used when the content is not valid UTF-8 and carries no
// BOM; an unknown or empty name leaves the detector's guess in place.
func NewCharsetHandler(defaultEncoding string) EncodingHandler {
	return &charsetHandler{defaultEncoding: strings.TrimSpace(defaultEncoding)}
}

// Decode implements EncodingHandler.
func (h *charsetHandler) Decode(content []byte) (Decoded, error) {
	if utf8.Valid(content) {
		return Decoded{Text: string(bytes.TrimPrefix(content, utf8BOM)), Encoding: "utf-8", Certain: true}, nil
	}

	enc, name, certain := charset.DetermineEncoding(content, "text/plain")
	if !certain && h.defaultEncoding != "" {
		if def, defName := charset.Lookup(h.defaultEncoding); def != nil {
			enc, name, certain = def, defName, true
		}
	}
	if enc == nil {
		return Decoded{}, fmt.Errorf("no decoder for encoding %q", name)
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(content), enc.NewDecoder()))
	if err != nil {
		return Decoded{}, fmt.Errorf("failed to convert from '%s': %w", name, err)
	}
	return Decoded{Text: string(bytes.TrimPrefix(out, utf8BOM)), Encoding: name, Certain: certain}, nil
}

func isMIMETextBased(contentType string) bool {
	mimeType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if strings.HasPrefix(mimeType, "text/") || knownTextMIMEPrefixes[mimeType] {
		return true
	}
	if strings.HasSuffix(mimeType, "+xml") || strings.HasSuffix(mimeType, "+json") {
		return true
	}
	// octet-stream is inconclusive, the null byte check decides.
	return mimeType == "application/octet-stream"
}

// IsBinary implements EncodingHandler using MIME sniffing on the first 512 bytes
// and the share of null bytes in the first 1024.
func (h *charsetHandler) IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	// UTF-16 text is full of null bytes.
	if bytes.HasPrefix(content, utf16LEBOM) || bytes.HasPrefix(content, utf16BEBOM) {
		return false
	}
	sniff := content
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	if !isMIMETextBased(http.DetectContentType(sniff)) {
		return true
	}
	check := content
	if len(check) > checkLen {
		check = check[:checkLen]
	}
	nullCount := bytes.Count(check, []byte{0x00})
	return float64(nullCount)/float64(len(check)) > nullThreshold
}
