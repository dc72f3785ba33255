package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

func TestLinePrompter_Dialect(t *testing.T) {
	testCases := []struct {
		input   string
		want    converter.Dialect
		wantErr error
	}{
		{"1\n", converter.DialectDokuWiki, nil},
		{" 2 \n", converter.DialectMediaWiki, nil},
		{"2", converter.DialectMediaWiki, nil},
		{"3\n", "", ErrInvalidChoice},
		{"dokuwiki\n", "", ErrInvalidChoice},
		{"", "", ErrCancelled},
	}
	for _, tc := range testCases {
		t.Run(strings.TrimSpace(tc.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tc.input), &out)

			got, err := p.Dialect()

			assert.Contains(t, out.String(), "Enter your choice (1/2): ")
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLinePrompter_Flatten(t *testing.T) {
	testCases := map[string]bool{
		"y\n":    true,
		"Y\n":    true,
		"yes\n":  true,
		"n\n":    false,
		"\n":     false,
		"sure\n": false,
	}
	for input, want := range testCases {
		p := NewLinePrompter(strings.NewReader(input), &bytes.Buffer{})

		got, err := p.Flatten()

		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestLinePrompter_ProtectedPrefixes(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader(" assets , img,,docs/api \n"), &out)

	got, err := p.ProtectedPrefixes()

	require.NoError(t, err)
	assert.Equal(t, []string{"assets", "img", "docs/api"}, got)
	assert.Equal(t, protectedQuestion, out.String())
}

func TestLinePrompter_SequentialAnswers(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("2\ny\nassets\n"), &bytes.Buffer{})

	d, err := p.Dialect()
	require.NoError(t, err)
	f, err := p.Flatten()
	require.NoError(t, err)
	prot, err := p.ProtectedPrefixes()
	require.NoError(t, err)

	assert.Equal(t, converter.DialectMediaWiki, d)
	assert.True(t, f)
	assert.Equal(t, []string{"assets"}, prot)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
}
