package contract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// pathTemplate is a compiled path template such as "/pets/{petId}".
type pathTemplate struct {
	// template is the normalized template
	template string

	// shape is the template with placeholder names erased ("/pets/{}")
	shape string

	// regex is the compiled pattern for matching
	regex *regexp.Regexp

	// paramNames are the placeholder names in order of appearance
	paramNames []string

	// specificity is used for sorting (higher = more specific)
	specificity int
}

// normalizeTemplate strips a trailing slash from every template but "/".
func normalizeTemplate(template string) string {
	if len(template) > 1 {
		return strings.TrimRight(template, "/")
	}
	return template
}

// compileTemplate parses a normalized template. Unclosed, empty, nested, or
// duplicate placeholders and "*" wildcard segments are rejected.
func compileTemplate(template string) (*pathTemplate, error) {
	if template == "" || template[0] != '/' {
		return nil, fmt.Errorf("path template must start with '/'")
	}

	var regexBuf, shapeBuf strings.Builder
	regexBuf.WriteString("^")

	paramNames := []string{}
	specificity := 0

	for _, segment := range strings.Split(template[1:], "/") {
		if strings.Contains(segment, "*") {
			return nil, fmt.Errorf("wildcard segment %q is not allowed", segment)
		}
	}

	i := 0
	for i < len(template) {
		switch template[i] {
		case '{':
			end := strings.IndexByte(template[i:], '}')
			if end == -1 {
				return nil, fmt.Errorf("unclosed path parameter at position %d", i)
			}

			paramName := template[i+1 : i+end]
			if paramName == "" {
				return nil, fmt.Errorf("empty path parameter at position %d", i)
			}
			if strings.ContainsAny(paramName, "{/") {
				return nil, fmt.Errorf("malformed path parameter %q", paramName)
			}

			for _, existing := range paramNames {
				if existing == paramName {
					return nil, fmt.Errorf("duplicate path parameter %q", paramName)
				}
			}

			paramNames = append(paramNames, paramName)

			// Path segments are separated by / (RFC 3986)
			regexBuf.WriteString("([^/]+)")
			shapeBuf.WriteString("{}")

			i += end + 1
			// Parameters reduce specificity (exact matches are more specific)
			specificity--

		case '}':
			return nil, fmt.Errorf("unexpected '}' at position %d", i)

		default:
			c := template[i]
			regexBuf.WriteString(regexp.QuoteMeta(string(c)))
			shapeBuf.WriteByte(c)
			i++

			if c != '/' {
				specificity++
			}
		}
	}

	regexBuf.WriteString("/?$")

	regex, err := regexp.Compile(regexBuf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile path pattern: %w", err)
	}

	return &pathTemplate{
		template:    template,
		shape:       shapeBuf.String(),
		regex:       regex,
		paramNames:  paramNames,
		specificity: specificity,
	}, nil
}

// match reports whether path matches and returns the raw placeholder values.
func (pt *pathTemplate) match(path string) (map[string]string, bool) {
	matches := pt.regex.FindStringSubmatch(path)
	if matches == nil || len(matches) != len(pt.paramNames)+1 {
		return nil, false
	}

	params := make(map[string]string, len(pt.paramNames))
	for i, name := range pt.paramNames {
		params[name] = matches[i+1]
	}
	return params, true
}

// hasParam reports whether the template declares a {name} placeholder.
func (pt *pathTemplate) hasParam(name string) bool {
	for _, n := range pt.paramNames {
		if n == name {
			return true
		}
	}
	return false
}

// pathRouter finds the most specific path for a request path.
type pathRouter struct {
	entries []routeEntry
}

type routeEntry struct {
	tmpl *pathTemplate
	path *Path
}

// newPathRouter orders entries by specificity (highest first), then by
// template length (longest first), then alphabetically for stability.
func newPathRouter(entries []routeEntry) *pathRouter {
	sorted := make([]routeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].tmpl, sorted[j].tmpl
		if a.specificity != b.specificity {
			return a.specificity > b.specificity
		}
		if len(a.template) != len(b.template) {
			return len(a.template) > len(b.template)
		}
		return a.template < b.template
	})
	return &pathRouter{entries: sorted}
}

func (r *pathRouter) match(path string) (*Path, map[string]string, bool) {
	for _, e := range r.entries {
		if params, ok := e.tmpl.match(path); ok {
			return e.path, params, true
		}
	}
	return nil, nil, false
}
