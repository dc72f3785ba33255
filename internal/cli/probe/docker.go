// Package probe implements the container probe with the docker command line.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	libprobe "github.com/gitayam/markdown2dokuwiki/pkg/converter/probe"
)

const psFormat = "{{.ID}}\t{{.Names}}\t{{.Image}}"

// CommandRunner runs an external command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// DockerProbe implements libprobe.Probe by listing running containers with
// `docker ps`.
type DockerProbe struct {
	logger *slog.Logger
	run    CommandRunner
}

// NewDockerProbe creates a DockerProbe. A nil run uses os/exec.
func NewDockerProbe(loggerHandler slog.Handler, run CommandRunner) *DockerProbe {
	if run == nil {
		run = execRunner
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "probe"), slog.String("backend", "docker"))
	return &DockerProbe{logger: logger, run: run}
}

// FindWikiContainer implements libprobe.Probe.
func (p *DockerProbe) FindWikiContainer(ctx context.Context, dialect string) (libprobe.Container, error) {
	out, err := p.run(ctx, "docker", "ps", "--format", psFormat)
	if err != nil {
		p.logger.Debug("Docker is not available", slog.Any("error", err))
		return libprobe.Container{}, fmt.Errorf("%w: %w", libprobe.ErrNotFound, err)
	}

	var fallback *libprobe.Container
	for _, c := range parsePS(out) {
		if c.Kind == dialect {
			p.logger.Debug("Found matching wiki container", slog.String("name", c.Name), slog.String("image", c.Image))
			return c, nil
		}
		if fallback == nil {
			fallback = &c
		}
	}
	if fallback != nil {
		p.logger.Debug("Found wiki container of another kind", slog.String("name", fallback.Name), slog.String("kind", fallback.Kind))
		return *fallback, nil
	}
	return libprobe.Container{}, libprobe.ErrNotFound
}

// parsePS returns the wiki containers in `docker ps` output, in listing order.
func parsePS(out []byte) []libprobe.Container {
	var containers []libprobe.Container
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) != 3 {
			continue
		}
		kind := libprobe.ClassifyKind(fields[1], fields[2])
		if kind == "" {
			continue
		}
		containers = append(containers, libprobe.Container{
			ID:    fields[0],
			Name:  fields[1],
			Image: fields[2],
			Kind:  kind,
		})
	}
	return containers
}
