package probe

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libprobe "github.com/gitayam/markdown2dokuwiki/pkg/converter/probe"
)

const psOutput = "a1\tpostgres\tpostgres:16\n" +
	"b2\tmy-mediawiki\tmediawiki:1.41\n" +
	"c3\twiki\tlscr.io/linuxserver/dokuwiki:latest\n"

func fakeRunner(out string, err error, gotArgs *[]string) CommandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if gotArgs != nil {
			*gotArgs = append([]string{name}, args...)
		}
		return []byte(out), err
	}
}

func TestDockerProbe_PrefersDialectMatch(t *testing.T) {
	var args []string
	p := NewDockerProbe(slog.DiscardHandler, fakeRunner(psOutput, nil, &args))

	c, err := p.FindWikiContainer(context.Background(), "dokuwiki")

	require.NoError(t, err)
	assert.Equal(t, []string{"docker", "ps", "--format", psFormat}, args)
	assert.Equal(t, libprobe.Container{ID: "c3", Name: "wiki", Image: "lscr.io/linuxserver/dokuwiki:latest", Kind: "dokuwiki"}, c)
}

func TestDockerProbe_FallsBackToAnyWiki(t *testing.T) {
	out := "a1\tpostgres\tpostgres:16\nb2\tmy-mediawiki\tmediawiki:1.41\n"
	p := NewDockerProbe(slog.DiscardHandler, fakeRunner(out, nil, nil))

	c, err := p.FindWikiContainer(context.Background(), "dokuwiki")

	require.NoError(t, err)
	assert.Equal(t, "my-mediawiki", c.Name)
	assert.Equal(t, "mediawiki", c.Kind)
}

func TestDockerProbe_NotFound(t *testing.T) {
	t.Run("no wiki containers", func(t *testing.T) {
		p := NewDockerProbe(slog.DiscardHandler, fakeRunner("a1\tpostgres\tpostgres:16\n\n", nil, nil))

		_, err := p.FindWikiContainer(context.Background(), "mediawiki")

		assert.ErrorIs(t, err, libprobe.ErrNotFound)
	})

	t.Run("docker unavailable", func(t *testing.T) {
		cause := errors.New("executable file not found in $PATH")
		p := NewDockerProbe(slog.DiscardHandler, fakeRunner("", cause, nil))

		_, err := p.FindWikiContainer(context.Background(), "mediawiki")

		assert.ErrorIs(t, err, libprobe.ErrNotFound)
		assert.ErrorIs(t, err, cause)
	})
}

func TestParsePS_SkipsMalformedLines(t *testing.T) {
	got := parsePS([]byte("garbage\nx\ty\n d4\tdokuwiki\timg \n"))

	require.Len(t, got, 1)
	assert.Equal(t, "d4", got[0].ID)
	assert.Equal(t, "img", got[0].Image)
}
