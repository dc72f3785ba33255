package probe_test

import (
	"context"
	"testing"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter/probe"
	"github.com/stretchr/testify/assert"
)

func TestClassifyKind(t *testing.T) {
	assert.Equal(t, "dokuwiki", probe.ClassifyKind("wiki", "lscr.io/linuxserver/dokuwiki:latest"))
	assert.Equal(t, "mediawiki", probe.ClassifyKind("my-mediawiki", "mediawiki:1.41"))
	assert.Equal(t, "mediawiki", probe.ClassifyKind("wikimedia_app", "custom"))
	assert.Equal(t, "", probe.ClassifyKind("postgres", "postgres:16"))
}

func TestInstructions(t *testing.T) {
	doku := probe.Container{Name: "wiki", Kind: "dokuwiki"}
	assert.Contains(t, probe.Instructions(doku, "/tmp/docs_converted/"),
		"docker cp /tmp/docs_converted/. wiki:/app/www/public/data/pages/wiki/")

	media := probe.Container{Name: "mw", Kind: "mediawiki"}
	assert.Contains(t, probe.Instructions(media, "out"),
		"docker cp out/. mw:/var/www/html/Import")

	assert.Contains(t, probe.ManualInstructions("out"), "No running wiki container found")
}

func TestNoOpProbe(t *testing.T) {
	_, err := probe.NoOpProbe{}.FindWikiContainer(context.Background(), "dokuwiki")
	assert.ErrorIs(t, err, probe.ErrNotFound)
}
