package switchyard

import "fmt"

// LinkKind tells where a chain link came from.
type LinkKind int

const (
	LinkMiddleware LinkKind = iota
	LinkRoute
	LinkError
)

func (k LinkKind) String() string {
	switch k {
	case LinkMiddleware:
		return "middleware"
	case LinkRoute:
		return "route"
	case LinkError:
		return "error"
	default:
		return fmt.Sprintf("LinkKind(%d)", int(k))
	}
}

// Link is one handler in a dispatch chain.
type Link struct {
	Kind LinkKind
	// Scope is the middleware prefix or the route description.
	Scope string
	// Index is the registration index for bindings and the handler
	// position for route links.
	Index   int
	Handler HandlerFunc
}

func (l Link) String() string {
	return fmt.Sprintf("%s %s #%d", l.Kind, l.Scope, l.Index)
}

// Chain is the ordered handler sequence computed for one request. It is
// never modified once built.
type Chain []Link

// Describe returns a stable description of every link.
func (c Chain) Describe() []string {
	out := make([]string, len(c))
	for i, l := range c {
		out[i] = l.String()
	}
	return out
}
