package mcpserver

import (
	"regexp"
	"strings"
)

var templateSegmentRE = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// compiledTemplate is a URI pattern, possibly with `{name}` segments,
// turned into a regexp plus the literal character count used to break
// ties between overlapping templates (longest-specific-wins).
type compiledTemplate struct {
	pattern    string
	re         *regexp.Regexp
	names      []string
	literalLen int
}

func compileTemplate(pattern string) compiledTemplate {
	var names []string
	literalLen := 0

	reBuilder := strings.Builder{}
	reBuilder.WriteString("^")

	last := 0
	for _, loc := range templateSegmentRE.FindAllStringIndex(pattern, -1) {
		literal := pattern[last:loc[0]]
		literalLen += len(literal)
		reBuilder.WriteString(regexp.QuoteMeta(literal))

		name := pattern[loc[0]+1 : loc[1]-1]
		names = append(names, name)
		reBuilder.WriteString("(?P<" + name + ">[^/]+)")

		last = loc[1]
	}
	tail := pattern[last:]
	literalLen += len(tail)
	reBuilder.WriteString(regexp.QuoteMeta(tail))
	reBuilder.WriteString("$")

	return compiledTemplate{
		pattern:    pattern,
		re:         regexp.MustCompile(reBuilder.String()),
		names:      names,
		literalLen: literalLen,
	}
}

func (c compiledTemplate) match(uri string) (map[string]string, bool) {
	m := c.re.FindStringSubmatch(uri)
	if m == nil {
		return nil, false
	}
	bindings := make(map[string]string, len(c.names))
	for i, name := range c.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		bindings[name] = m[i]
	}
	return bindings, true
}

// matchBest returns the bindings of whichever candidate's template
// matches uri with the greatest literalLen, resolving overlapping
// template ambiguity in favour of the most specific pattern.
func matchBest(candidates []compiledTemplate, uri string) (compiledTemplate, map[string]string, bool) {
	var best compiledTemplate
	var bestBindings map[string]string
	found := false

	for _, c := range candidates {
		bindings, ok := c.match(uri)
		if !ok {
			continue
		}
		if !found || c.literalLen > best.literalLen {
			best = c
			bestBindings = bindings
			found = true
		}
	}
	return best, bestBindings, found
}
