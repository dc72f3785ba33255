package converter

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitayam/markdown2dokuwiki/pkg/util"
)

// IgnoreFileName is read from the root of the source tree when present. It holds
// one gitignore-style pattern per line; '#' starts a comment line and '!' negates.
const IgnoreFileName = ".wikiconvertignore"

type ignoreMatcher struct {
	patterns []ignorePattern
	logger   *slog.Logger
}

type ignorePattern struct {
	pattern     string // as passed to util.MatchesIgnore
	origPattern string // for reporting
	negated     bool
}

// newIgnoreMatcher loads patterns from the ignore file in root (if any) followed by
// configPatterns, so configuration can override the file.
func newIgnoreMatcher(root string, configPatterns []string, logger *slog.Logger) (*ignoreMatcher, error) {
	m := &ignoreMatcher{logger: logger.With(slog.String("component", "ignoreMatcher"))}

	ignoreFilePath := filepath.Join(root, IgnoreFileName)
	filePatterns, err := loadPatternsFromFile(ignoreFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		m.logger.Debug("No ignore file in source root", slog.String("path", ignoreFilePath))
	case err != nil:
		return nil, err
	default:
		m.addPatterns(filePatterns)
		m.logger.Debug("Loaded patterns from ignore file", slog.Int("count", len(filePatterns)))
	}
	// The ignore file itself is never collected.
	m.addPatterns([]string{"/" + IgnoreFileName})
	m.addPatterns(configPatterns)
	return m, nil
}

func loadPatternsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("open ignore file %s: %w", filePath, err)
	}
	defer file.Close()
	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file %s: %w", filePath, err)
	}
	return patterns, nil
}

func (m *ignoreMatcher) addPatterns(raw []string) {
	for _, r := range raw {
		p := ignorePattern{origPattern: r}
		trimmed := strings.TrimSpace(r)
		if strings.HasPrefix(trimmed, "!") {
			p.negated = true
			trimmed = strings.TrimSpace(trimmed[1:])
		}
		if trimmed == "" || trimmed == "/" {
			continue
		}
		p.pattern = filepath.ToSlash(trimmed)
		m.patterns = append(m.patterns, p)
	}
}

// Match reports whether relPath is ignored, and the pattern that decided it.
// The last matching pattern wins.
func (m *ignoreMatcher) Match(relPath string, isDir bool) (bool, string) {
	ignored, decidedBy := false, ""
	for _, p := range m.patterns {
		if util.MatchesIgnore(p.pattern, relPath, isDir) {
			ignored = !p.negated
			decidedBy = p.origPattern
		}
	}
	if !ignored {
		return false, ""
	}
	return true, decidedBy
}

func (m *ignoreMatcher) patternCount() int {
	return len(m.patterns)
}
