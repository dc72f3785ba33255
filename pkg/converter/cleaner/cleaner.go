// Package cleaner strips structural noise from Markdown documents before they are
// imported into a wiki: front matter, comments, raw HTML and LaTeX blocks, tags, and
// link targets that only make sense in the source tree.
package cleaner

import (
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config controls the behavior of a Cleaner.
type Config struct {
	// WikiBaseURL is the absolute URL of the internal wiki. Links under it become
	// root-relative. An empty value disables that rule.
	WikiBaseURL string
	// FrontMatterDashesOnly limits "---" removal to the leading front-matter block.
	// When false every remaining "---" in the document is removed as well.
	FrontMatterDashesOnly bool
}

// Result is the outcome of cleaning a single document.
type Result struct {
	Text    string
	Changed bool
	// FrontMatter holds the fields of the removed front-matter block when it parsed
	// as a YAML mapping; nil otherwise.
	FrontMatter map[string]any
	// Applied lists the rules that modified the text, in application order.
	Applied []string
}

// FrontMatterKeys returns the front-matter field names in sorted order.
func (r Result) FrontMatterKeys() []string {
	if len(r.FrontMatter) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.FrontMatter))
	for k := range r.FrontMatter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type rule struct {
	name string
	re   *regexp.Regexp
	repl string
	// literal rules are plain substring removals.
	literal string
}

func (r rule) apply(text string) string {
	if r.re == nil {
		return strings.ReplaceAll(text, r.literal, "")
	}
	return r.re.ReplaceAllString(text, r.repl)
}

var (
	frontMatterRe  = regexp.MustCompile(`\A---([\s\S]+?)---\s*`)
	commentRe      = regexp.MustCompile(`(?s)<!--.*?-->`)
	rawBlockRe     = regexp.MustCompile("(?i)```(html|latex)[\\s\\S]+?```")
	tagRe          = regexp.MustCompile(`<(.*?)>`)
	pathPrefixRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)/]*/)+([^)/]+)\)`)
	pageExtRe      = regexp.MustCompile(`\[([^\]]+)\]\(([^.)]+)\.(?:md|html)\)`)
	rulePathPrefix = rule{name: "link-path", re: pathPrefixRe, repl: "[${1}](${3})"}
	rulePageExt    = rule{name: "link-extension", re: pageExtRe, repl: "[${1}](${2})"}
)

// Cleaner applies the ordered rewrite rules to document text. A Cleaner is safe
// for concurrent use.
type Cleaner struct {
	rules []rule
}

// New builds a Cleaner for cfg.
func New(cfg Config) *Cleaner {
	rules := make([]rule, 0, 7)
	if !cfg.FrontMatterDashesOnly {
		rules = append(rules, rule{name: "dashes", literal: "---"})
	}
	rules = append(rules,
		rule{name: "comments", re: commentRe},
		rule{name: "raw-blocks", re: rawBlockRe},
		rule{name: "tags", re: tagRe},
	)
	if base := strings.TrimRight(strings.TrimSpace(cfg.WikiBaseURL), "/"); base != "" {
		re := regexp.MustCompile(`\[([^\]]+)\]\(` + regexp.QuoteMeta(base) + `/([^)]+)\)`)
		rules = append(rules, rule{name: "wiki-base-url", re: re, repl: "[${1}](/${2})"})
	}
	rules = append(rules, rulePathPrefix, rulePageExt)
	return &Cleaner{rules: rules}
}

// Clean runs every rule over text in order. Later rules see the output of earlier
// ones, so comments are gone before tags are stripped and base URLs are gone
// before path prefixes are dropped.
func (c *Cleaner) Clean(text string) Result {
	res := Result{}
	out := text
	if m := frontMatterRe.FindStringSubmatchIndex(out); m != nil {
		block := out[m[2]:m[3]]
		var fields map[string]any
		if err := yaml.Unmarshal([]byte(block), &fields); err == nil && len(fields) > 0 {
			res.FrontMatter = fields
		}
		out = out[m[1]:]
		res.Applied = append(res.Applied, "front-matter")
	}
	for _, r := range c.rules {
		next := r.apply(out)
		if next != out {
			res.Applied = append(res.Applied, r.name)
			out = next
		}
	}
	res.Text = out
	res.Changed = out != text
	return res
}

// RuleNames returns the names of the configured rules in application order.
func (c *Cleaner) RuleNames() []string {
	names := []string{"front-matter"}
	for _, r := range c.rules {
		names = append(names, r.name)
	}
	return names
}
