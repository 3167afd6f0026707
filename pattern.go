package switchyard

import (
	"fmt"
	"regexp"
	"strings"
)

// SegmentKind classifies one "/"-separated piece of a route pattern.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentParam
	SegmentConstrained
	SegmentCompound
	SegmentWildcard
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentParam:
		return "param"
	case SegmentConstrained:
		return "constrained"
	case SegmentCompound:
		return "compound"
	case SegmentWildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is a compiled pattern segment.
type Segment struct {
	Kind SegmentKind
	// Raw is the segment as written in the pattern.
	Raw string
	// Names lists the captured parameter names in positional order.
	Names []string
	// Constraints maps a parameter name to its regex constraint, if any.
	Constraints map[string]string

	re *regexp.Regexp
}

func (s *Segment) match(value string, params Params) bool {
	switch s.Kind {
	case SegmentLiteral:
		return value == s.Raw
	case SegmentParam:
		if value == "" {
			return false
		}
		params[s.Names[0]] = value
		return true
	case SegmentConstrained:
		if value == "" || !s.re.MatchString(value) {
			return false
		}
		params[s.Names[0]] = value
		return true
	case SegmentCompound:
		m := s.re.FindStringSubmatch(value)
		if m == nil {
			return false
		}
		for i, name := range s.Names {
			v := m[s.re.SubexpIndex(groupName(i))]
			if v == "" {
				return false
			}
			params[name] = v
		}
		return true
	default:
		return false
	}
}

// Pattern is a compiled route pattern.
type Pattern struct {
	raw      string
	segments []Segment
	catchAll bool
	tail     bool
}

// CompilePattern compiles a route pattern such as
// "/users/:userId/books/:bookId", "/flights/:from-:to",
// "/event/:id([0-9]{5})", "/files/*" or the catch-all "*".
func CompilePattern(pattern string) (*Pattern, error) {
	fail := func(format string, args ...any) (*Pattern, error) {
		return nil, &PatternCompileError{Pattern: pattern, Reason: fmt.Sprintf(format, args...)}
	}

	if pattern == "" {
		return fail("empty pattern")
	}

	if pattern == "*" {
		return &Pattern{raw: pattern, catchAll: true}, nil
	}

	if pattern[0] != '/' {
		return fail("must start with /")
	}

	p := &Pattern{raw: pattern}
	body := strings.TrimSuffix(pattern[1:], "/")
	if body == "" {
		return p, nil
	}

	parts, err := splitSegments(body)
	if err != nil {
		return fail("%s", err)
	}

	seen := make(map[string]struct{})
	for i, part := range parts {
		if part == "" {
			return fail("empty segment at position %d", i+1)
		}

		if part == "*" {
			if i != len(parts)-1 {
				return fail("wildcard must be the last segment")
			}
			p.tail = true
			continue
		}

		seg, segErr := compileSegment(part)
		if segErr != nil {
			return fail("segment %q: %s", part, segErr)
		}

		for _, name := range seg.Names {
			if _, dup := seen[name]; dup {
				return fail("duplicate parameter %q", name)
			}
			seen[name] = struct{}{}
		}

		p.segments = append(p.segments, seg)
	}

	return p, nil
}

// String returns the pattern as registered.
func (p *Pattern) String() string {
	return p.raw
}

// IsCatchAll reports whether the pattern is the bare "*" fallback.
func (p *Pattern) IsCatchAll() bool {
	return p.catchAll
}

// Segments returns the compiled segments. A trailing wildcard is reported
// as a final SegmentWildcard.
func (p *Pattern) Segments() []Segment {
	out := make([]Segment, 0, len(p.segments)+1)
	out = append(out, p.segments...)
	if p.tail || p.catchAll {
		out = append(out, Segment{Kind: SegmentWildcard, Raw: "*"})
	}
	return out
}

// Params lists every parameter name the pattern captures, in order.
func (p *Pattern) Params() []string {
	var names []string
	for _, s := range p.segments {
		names = append(names, s.Names...)
	}
	if p.tail {
		names = append(names, "*")
	}
	return names
}

// Match matches path against the pattern and returns the captured
// parameters.
func (p *Pattern) Match(path string) (Params, bool) {
	if p.catchAll {
		return Params{}, true
	}

	segs := splitPath(path)
	n := len(p.segments)
	if p.tail {
		if len(segs) < n {
			return nil, false
		}
	} else if len(segs) != n {
		return nil, false
	}

	params := make(Params, len(p.segments))
	for i := range p.segments {
		if !p.segments[i].match(segs[i], params) {
			return nil, false
		}
	}

	if p.tail {
		params["*"] = strings.Join(segs[n:], "/")
	}

	return params, true
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func groupName(i int) string {
	return fmt.Sprintf("p%d", i)
}

type token struct {
	literal    string
	param      string
	constraint string
}

func (t token) isParam() bool {
	return t.param != ""
}

func compileSegment(part string) (Segment, error) {
	var tokens []token

	for i := 0; i < len(part); {
		switch part[i] {
		case ':':
			j := i + 1
			for j < len(part) && isNameChar(part[j]) {
				j++
			}
			name := part[i+1 : j]
			if name == "" {
				return Segment{}, fmt.Errorf("empty parameter name")
			}

			constraint := ""
			if j < len(part) && part[j] == '(' {
				end, err := closingParen(part, j)
				if err != nil {
					return Segment{}, err
				}
				constraint = part[j+1 : end]
				if constraint == "" {
					return Segment{}, fmt.Errorf("empty constraint for :%s", name)
				}
				j = end + 1
			}

			if len(tokens) > 0 && tokens[len(tokens)-1].isParam() {
				return Segment{}, fmt.Errorf("parameters :%s and :%s need a literal delimiter", tokens[len(tokens)-1].param, name)
			}

			tokens = append(tokens, token{param: name, constraint: constraint})
			i = j
		case '(':
			return Segment{}, fmt.Errorf("constraint without parameter at offset %d", i)
		case ')':
			return Segment{}, fmt.Errorf("unmatched ) at offset %d", i)
		default:
			j := i
			for j < len(part) && part[j] != ':' && part[j] != '(' && part[j] != ')' {
				j++
			}
			lit := part[i:j]
			if strings.Contains(lit, "*") {
				return Segment{}, fmt.Errorf("wildcard must be a whole segment")
			}
			tokens = append(tokens, token{literal: lit})
			i = j
		}
	}

	seg := Segment{Raw: part}

	if len(tokens) == 1 && !tokens[0].isParam() {
		seg.Kind = SegmentLiteral
		return seg, nil
	}

	if len(tokens) == 1 {
		t := tokens[0]
		seg.Names = []string{t.param}
		if t.constraint == "" {
			seg.Kind = SegmentParam
			return seg, nil
		}
		re, err := regexp.Compile("^(?:" + t.constraint + ")$")
		if err != nil {
			return Segment{}, fmt.Errorf("invalid constraint for :%s: %w", t.param, err)
		}
		seg.Kind = SegmentConstrained
		seg.Constraints = map[string]string{t.param: t.constraint}
		seg.re = re
		return seg, nil
	}

	lastParam := -1
	for i, t := range tokens {
		if t.isParam() {
			lastParam = i
		}
	}

	var expr strings.Builder
	expr.WriteString("^")
	for i, t := range tokens {
		if !t.isParam() {
			expr.WriteString(regexp.QuoteMeta(t.literal))
			continue
		}

		body := ".+?"
		if i == lastParam {
			body = ".+"
		}
		if t.constraint != "" {
			if _, err := regexp.Compile(t.constraint); err != nil {
				return Segment{}, fmt.Errorf("invalid constraint for :%s: %w", t.param, err)
			}
			body = "(?:" + t.constraint + ")"
			if seg.Constraints == nil {
				seg.Constraints = make(map[string]string)
			}
			seg.Constraints[t.param] = t.constraint
		}

		fmt.Fprintf(&expr, "(?P<%s>%s)", groupName(len(seg.Names)), body)
		seg.Names = append(seg.Names, t.param)
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return Segment{}, fmt.Errorf("compile segment: %w", err)
	}

	seg.Kind = SegmentCompound
	seg.re = re
	return seg, nil
}

// closingParen returns the index of the ")" closing the "(" at open,
// honouring escapes and character classes.
func closingParen(s string, open int) (int, error) {
	depth := 0
	inClass := false
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '(':
			if !inClass {
				depth++
			}
		case ')':
			if inClass {
				continue
			}
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unmatched ( at offset %d", open)
}

// splitSegments splits on "/" outside of parenthesised constraints.
func splitSegments(s string) ([]string, error) {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			end, err := closingParen(s, i)
			if err != nil {
				return nil, err
			}
			i = end
		case '/':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:]), nil
}

// splitPath splits a request path into segments, ignoring the leading and
// a trailing slash.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// compilePrefix validates a middleware prefix and returns its segments.
// "", "/" and "*" match every path.
func compilePrefix(prefix string) ([]string, error) {
	if prefix == "" || prefix == "/" || prefix == "*" {
		return nil, nil
	}

	fail := func(reason string) ([]string, error) {
		return nil, &PatternCompileError{Pattern: prefix, Reason: reason}
	}

	if prefix[0] != '/' {
		return fail("prefix must start with /")
	}

	if strings.ContainsAny(prefix, ":*()") {
		return fail("prefix must be literal")
	}

	segs := splitPath(prefix)
	for _, s := range segs {
		if s == "" {
			return fail("empty segment")
		}
	}
	return segs, nil
}

func hasPathPrefix(pathSegs, prefix []string) bool {
	if len(pathSegs) < len(prefix) {
		return false
	}
	for i, s := range prefix {
		if pathSegs[i] != s {
			return false
		}
	}
	return true
}
