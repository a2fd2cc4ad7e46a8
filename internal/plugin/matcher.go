package plugin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/assetwrap/pkg/host"
)

// DefaultTest selects JavaScript files, optionally followed by a query string.
const DefaultTest = `/\.js($|\?)/i`

// Condition matches an asset name either by regular expression or by prefix.
// Expressions are written /pattern/flags; "i" is the only supported flag.
type Condition struct {
	raw    string
	prefix string
	re     *regexp.Regexp
}

// ParseCondition compiles one condition.
func ParseCondition(s string) (Condition, error) {
	if len(s) >= 2 && s[0] == '/' {
		if end := strings.LastIndexByte(s, '/'); end > 0 {
			pattern, flags := s[1:end], s[end+1:]
			prefix := ""
			for _, f := range flags {
				switch f {
				case 'i':
					prefix = "(?i)"
				default:
					return Condition{}, fmt.Errorf("condition %q: unsupported flag %q", s, f)
				}
			}
			re, err := regexp.Compile(prefix + pattern)
			if err != nil {
				return Condition{}, fmt.Errorf("condition %q: %w", s, err)
			}
			return Condition{raw: s, re: re}, nil
		}
	}
	return Condition{raw: s, prefix: s}, nil
}

// Match reports whether name satisfies the condition.
func (c Condition) Match(name string) bool {
	if c.re != nil {
		return c.re.MatchString(name)
	}
	return strings.HasPrefix(name, c.prefix)
}

func (c Condition) String() string { return c.raw }

// Rule matches when any of its conditions does.
type Rule []Condition

// Match reports whether any condition matches name.
func (r Rule) Match(name string) bool {
	for _, c := range r {
		if c.Match(name) {
			return true
		}
	}
	return false
}

func parseRule(conds []string) (Rule, error) {
	rule := make(Rule, 0, len(conds))
	for _, s := range conds {
		c, err := ParseCondition(s)
		if err != nil {
			return nil, err
		}
		rule = append(rule, c)
	}
	return rule, nil
}

// Matcher is the matching policy of one plugin instance. An asset name is
// eligible when it passes test, passes include (if any) and fails exclude.
type Matcher struct {
	test    Rule
	include Rule
	exclude Rule
}

// NewMatcher compiles a matching policy. An empty test falls back to
// DefaultTest.
func NewMatcher(test, include, exclude []string) (*Matcher, error) {
	if len(test) == 0 {
		test = []string{DefaultTest}
	}
	m := &Matcher{}
	var err error
	if m.test, err = parseRule(test); err != nil {
		return nil, fmt.Errorf("invalid test: %w", err)
	}
	if m.include, err = parseRule(include); err != nil {
		return nil, fmt.Errorf("invalid include: %w", err)
	}
	if m.exclude, err = parseRule(exclude); err != nil {
		return nil, fmt.Errorf("invalid exclude: %w", err)
	}
	return m, nil
}

// Match reports whether name is eligible for transformation.
func (m *Matcher) Match(name string) bool {
	if !m.test.Match(name) {
		return false
	}
	if len(m.include) > 0 && !m.include.Match(name) {
		return false
	}
	if m.exclude.Match(name) {
		return false
	}
	return true
}

// Select returns the eligible files of the chunks followed by the eligible
// additional assets, in first-seen order, each name at most once.
func (m *Matcher) Select(chunks []*host.Chunk, additional []string) []string {
	seen := make(map[string]struct{})
	var selected []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		if m.Match(name) {
			selected = append(selected, name)
		}
	}

	for _, chunk := range chunks {
		for _, file := range chunk.Files {
			add(file)
		}
	}
	for _, file := range additional {
		add(file)
	}
	return selected
}
