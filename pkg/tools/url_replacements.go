package tools

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnodet/hnvm/pkg/config"
)

const regexPrefix = "regex:"

// URLReplacer rewrites download and registry URLs to point at mirrors
type URLReplacer struct {
	rules []urlRule
}

type urlRule struct {
	match       string
	regex       *regexp.Regexp
	replacement string
}

// NewURLReplacer compiles replacement rules. A match prefixed with "regex:" is a
// regular expression whose groups can be referenced as $1; anything else is a plain substring.
func NewURLReplacer(replacements []config.URLReplacement) (*URLReplacer, error) {
	r := &URLReplacer{}
	for _, repl := range replacements {
		if repl.Match == "" {
			return nil, &ConfigError{Msg: "url-replacements entry with an empty match"}
		}
		rule := urlRule{match: repl.Match, replacement: repl.Replace}
		if pattern, ok := strings.CutPrefix(repl.Match, regexPrefix); ok {
			regex, err := regexp.Compile(pattern)
			if err != nil {
				return nil, &ConfigError{Msg: fmt.Sprintf("invalid regex pattern '%s'", pattern), Err: err}
			}
			rule.regex = regex
		}
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

// Apply rewrites url with the first rule that changes it
func (r *URLReplacer) Apply(url string) string {
	if r == nil {
		return url
	}
	for _, rule := range r.rules {
		var rewritten string
		if rule.regex != nil {
			rewritten = rule.regex.ReplaceAllString(url, rule.replacement)
		} else {
			rewritten = strings.ReplaceAll(url, rule.match, rule.replacement)
		}
		if rewritten != url {
			logVerbose("URL replacement applied: %s -> %s (pattern: %s)", url, rewritten, rule.match)
			return rewritten
		}
	}
	return url
}

// Len returns the number of configured rules
func (r *URLReplacer) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}
