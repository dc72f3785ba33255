// Package prompt asks the operator for the conversion settings that were not
// given on the command line or in a config file.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gitayam/markdown2dokuwiki/internal/cli/ui"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

var (
	// ErrInvalidChoice is returned when the dialect answer is not 1 or 2.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrCancelled is returned when the operator aborts a prompt.
	ErrCancelled = errors.New("prompt cancelled")
)

const (
	dialectQuestion   = "Choose the conversion type:\n1. DokuWiki\n2. MediaWiki\nEnter your choice (1/2): "
	flattenQuestion   = "Do you want to flatten the directory structure? (y/n): "
	protectedQuestion = "Enter comma-separated directory names you want to protect from flattening: "
)

// Supplier provides the three interactive settings of a run.
type Supplier interface {
	Dialect() (converter.Dialect, error)
	Flatten() (bool, error)
	ProtectedPrefixes() ([]string, error)
}

// LinePrompter asks each question on its own line and reads the answer from in.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) ask(question string) (string, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: no answer given", ErrCancelled)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Dialect implements Supplier. Only "1" and "2" are accepted.
func (p *LinePrompter) Dialect() (converter.Dialect, error) {
	answer, err := p.ask(dialectQuestion)
	if err != nil {
		return "", err
	}
	switch answer {
	case "1":
		return converter.DialectDokuWiki, nil
	case "2":
		return converter.DialectMediaWiki, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChoice, answer)
}

// Flatten implements Supplier. Anything other than "y" or "yes" means no.
func (p *LinePrompter) Flatten() (bool, error) {
	answer, err := p.ask(flattenQuestion)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// ProtectedPrefixes implements Supplier. An empty answer protects nothing.
func (p *LinePrompter) ProtectedPrefixes() ([]string, error) {
	answer, err := p.ask(protectedQuestion)
	if err != nil {
		return nil, err
	}
	return SplitList(answer), nil
}

// SplitList splits a comma-separated answer, trimming blanks and dropping
// empty entries.
func SplitList(answer string) []string {
	var out []string
	for _, part := range strings.Split(answer, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TUIPrompter uses the full-screen picker for the dialect and line prompts for
// the rest.
type TUIPrompter struct {
	*LinePrompter
	in  io.Reader
	out io.Writer
}

// NewTUIPrompter creates a TUIPrompter reading keys from in.
func NewTUIPrompter(in io.Reader, out io.Writer) *TUIPrompter {
	return &TUIPrompter{LinePrompter: NewLinePrompter(in, out), in: in, out: out}
}

// Dialect implements Supplier with the Bubble Tea picker.
func (p *TUIPrompter) Dialect() (converter.Dialect, error) {
	model := ui.NewPickerModel()
	program := tea.NewProgram(model, tea.WithInput(p.in), tea.WithOutput(p.out))
	if _, err := program.Run(); err != nil {
		return "", fmt.Errorf("dialect picker failed: %w", err)
	}
	dialect, ok := model.Chosen()
	if !ok {
		return "", ErrCancelled
	}
	return dialect, nil
}

// StaticSupplier answers every question with a fixed value.
type StaticSupplier struct {
	DialectValue   converter.Dialect
	FlattenValue   bool
	ProtectedValue []string
}

// Dialect implements Supplier.
func (s StaticSupplier) Dialect() (converter.Dialect, error) {
	if s.DialectValue == "" {
		return "", ErrCancelled
	}
	return s.DialectValue, nil
}

// Flatten implements Supplier.
func (s StaticSupplier) Flatten() (bool, error) { return s.FlattenValue, nil }

// ProtectedPrefixes implements Supplier.
func (s StaticSupplier) ProtectedPrefixes() ([]string, error) { return s.ProtectedValue, nil }
