// Package testutil provides mock implementations for interfaces defined in the
// converter library (pkg/converter and subpackages) and the CLI. These mocks
// let unit tests isolate one component at a time.
package testutil

import (
	"context"
	"io"
	"text/template"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/encoding"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/git"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/probe"
	tpl "github.com/gitayam/markdown2dokuwiki/pkg/converter/template"
)

// MockLanguageDetector provides a mock implementation of the language.LanguageDetector interface.
type MockLanguageDetector struct {
	mock.Mock
}

// Detect mocks the Detect method.
func (m *MockLanguageDetector) Detect(content []byte, filePath string) (lang string, confidence float64, err error) {
	args := m.Called(content, filePath)
	lang, _ = args.Get(0).(string)
	confidence, _ = args.Get(1).(float64)
	err = args.Error(2)
	return
}

// MockEncodingHandler provides a mock implementation of the encoding.EncodingHandler interface.
type MockEncodingHandler struct {
	mock.Mock
}

// Decode mocks the Decode method.
func (m *MockEncodingHandler) Decode(content []byte) (encoding.Decoded, error) {
	args := m.Called(content)
	decoded, _ := args.Get(0).(encoding.Decoded)
	return decoded, args.Error(1)
}

// IsBinary mocks the IsBinary method.
func (m *MockEncodingHandler) IsBinary(content []byte) bool {
	args := m.Called(content)
	isBinary, _ := args.Get(0).(bool)
	return isBinary
}

// MockTemplateExecutor provides a mock implementation of the template.TemplateExecutor interface.
type MockTemplateExecutor struct {
	mock.Mock
}

// Execute mocks the Execute method.
func (m *MockTemplateExecutor) Execute(writer io.Writer, template *template.Template, metadata *tpl.AuditMetadata) error {
	args := m.Called(writer, template, metadata)
	return args.Error(0)
}

// MockRevisionReader provides a mock implementation of the git.RevisionReader interface.
type MockRevisionReader struct {
	mock.Mock
}

// ReadRevision mocks the ReadRevision method.
func (m *MockRevisionReader) ReadRevision(path string) (git.Revision, error) {
	args := m.Called(path)
	rev, _ := args.Get(0).(git.Revision)
	return rev, args.Error(1)
}

// MockProbe provides a mock implementation of the probe.Probe interface.
type MockProbe struct {
	mock.Mock
}

// FindWikiContainer mocks the FindWikiContainer method.
func (m *MockProbe) FindWikiContainer(ctx context.Context, dialect string) (probe.Container, error) {
	args := m.Called(ctx, dialect)
	c, _ := args.Get(0).(probe.Container)
	return c, args.Error(1)
}

// MockHooks provides a mock implementation of the converter.Hooks interface.
// Configure expectations using testify/mock methods (e.g., .On("OnFileStatusUpdate", ...).Return(...)).
type MockHooks struct {
	mock.Mock
}

// OnStageStart mocks the OnStageStart method.
func (m *MockHooks) OnStageStart(stage converter.Stage, total int) error {
	args := m.Called(stage, total)
	return args.Error(0)
}

// OnFileDiscovered mocks the OnFileDiscovered method.
func (m *MockHooks) OnFileDiscovered(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnNotice mocks the OnNotice method.
func (m *MockHooks) OnNotice(path string, message string) error {
	args := m.Called(path, message)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report converter.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

// NewPermissiveHooks returns a MockHooks that accepts every call.
func NewPermissiveHooks() *MockHooks {
	h := &MockHooks{}
	h.On("OnStageStart", mock.Anything, mock.Anything).Return(nil)
	h.On("OnFileDiscovered", mock.Anything).Return(nil)
	h.On("OnFileStatusUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	h.On("OnNotice", mock.Anything, mock.Anything).Return(nil)
	h.On("OnRunComplete", mock.Anything).Return(nil)
	return h
}
