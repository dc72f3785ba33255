// Package probe defines the environment probe used after a run to find a running
// wiki container and suggest how to copy the converted tree into it. The probe
// is advisory: the pipeline never depends on its result.
package probe

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no matching container is running.
var ErrNotFound = errors.New("no wiki container found")

// Import paths of the supported wiki images.
const (
	DokuWikiImportPath  = "/app/www/public/data/pages/wiki/"
	MediaWikiImportPath = "/var/www/html/Import"
)

// Container is a running container that looks like a wiki.
type Container struct {
	ID    string
	Name  string
	Image string
	// Kind is "dokuwiki" or "mediawiki".
	Kind string
}

// Probe locates a running wiki container.
type Probe interface {
	// FindWikiContainer returns the best match for dialect ("dokuwiki" or
	// "mediawiki"): a container of the same kind if one runs, otherwise any wiki
	// container. It returns an error wrapping ErrNotFound when nothing matches.
	FindWikiContainer(ctx context.Context, dialect string) (Container, error)
}

// NoOpProbe never finds anything.
type NoOpProbe struct{}

// FindWikiContainer implements Probe.
func (NoOpProbe) FindWikiContainer(ctx context.Context, dialect string) (Container, error) {
	return Container{}, ErrNotFound
}

// ClassifyKind returns the wiki kind suggested by a container's name or image,
// or "" if it does not look like a wiki.
func ClassifyKind(name, image string) string {
	s := strings.ToLower(name + " " + image)
	switch {
	case strings.Contains(s, "dokuwiki"):
		return "dokuwiki"
	case strings.Contains(s, "mediawiki"), strings.Contains(s, "wikimedia"):
		return "mediawiki"
	}
	return ""
}

// ImportPath returns the directory inside a container of the given kind that
// receives imported pages.
func ImportPath(kind string) string {
	if kind == "mediawiki" {
		return MediaWikiImportPath
	}
	return DokuWikiImportPath
}

// Instructions returns the operator-facing copy instruction for c.
func Instructions(c Container, outputDir string) string {
	return fmt.Sprintf("To copy the converted files into the %s container, run:\n  docker cp %s/. %s:%s",
		c.Kind, filepath.Clean(outputDir), c.Name, ImportPath(c.Kind))
}

// ManualInstructions is printed when no container was found.
func ManualInstructions(outputDir string) string {
	return fmt.Sprintf("No running wiki container found. Copy the contents of %s into your wiki's page directory manually.",
		filepath.Clean(outputDir))
}
