package http

import (
	"strings"

	"github.com/sagarc03/switchyard"
)

// Info describes the API in the generated document.
type Info struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

// Document is a minimal OpenAPI 3 document.
type Document struct {
	OpenAPI string              `json:"openapi" yaml:"openapi"`
	Info    Info                `json:"info" yaml:"info"`
	Paths   map[string]PathItem `json:"paths" yaml:"paths"`
}

// PathItem maps a lower case method to its operation.
type PathItem map[string]Operation

type Operation struct {
	OperationID string                 `json:"operationId" yaml:"operationId"`
	Parameters  []Parameter            `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]ResponseDoc `json:"responses" yaml:"responses"`
}

type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Required bool   `json:"required" yaml:"required"`
	Schema   Schema `json:"schema" yaml:"schema"`
}

type Schema struct {
	Type    string `json:"type" yaml:"type"`
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

type ResponseDoc struct {
	Description string `json:"description" yaml:"description"`
}

// wildcardParam names the trailing wildcard capture in documented paths.
const wildcardParam = "path"

var allMethods = []switchyard.Method{
	switchyard.MethodGet,
	switchyard.MethodPost,
	switchyard.MethodPut,
	switchyard.MethodPatch,
	switchyard.MethodDelete,
}

// OpenAPI builds a document from the registry's route table. Routes shadowed
// by an earlier registration and the "*" fallback are left out.
func OpenAPI(reg *switchyard.Registry, info Info) Document {
	doc := Document{
		OpenAPI: "3.0.3",
		Info:    info,
		Paths:   make(map[string]PathItem),
	}

	for _, route := range reg.Routes() {
		if route.Pattern.IsCatchAll() {
			continue
		}

		path, params := openAPIPath(route.Pattern)

		methods := []switchyard.Method{route.Method}
		if route.Method == switchyard.MethodAll {
			methods = allMethods
		}

		item, ok := doc.Paths[path]
		if !ok {
			item = make(PathItem)
			doc.Paths[path] = item
		}

		for _, m := range methods {
			key := strings.ToLower(string(m))
			if _, exists := item[key]; exists {
				continue
			}
			item[key] = Operation{
				OperationID: operationID(m, path),
				Parameters:  params,
				Responses: map[string]ResponseDoc{
					"default": {Description: "Response produced by the route handlers"},
				},
			}
		}
	}

	return doc
}

func openAPIPath(p *switchyard.Pattern) (string, []Parameter) {
	var (
		parts  []string
		params []Parameter
	)

	for _, seg := range p.Segments() {
		switch seg.Kind {
		case switchyard.SegmentLiteral:
			parts = append(parts, seg.Raw)
		case switchyard.SegmentWildcard:
			parts = append(parts, "{"+wildcardParam+"}")
			params = append(params, Parameter{
				Name: wildcardParam, In: "path", Required: true,
				Schema: Schema{Type: "string"},
			})
		default:
			raw := seg.Raw
			for _, name := range seg.Names {
				token := ":" + name
				if c, ok := seg.Constraints[name]; ok {
					token += "(" + c + ")"
				}
				raw = strings.Replace(raw, token, "{"+name+"}", 1)
				params = append(params, Parameter{
					Name: name, In: "path", Required: true,
					Schema: Schema{Type: "string", Pattern: anchored(seg.Constraints[name])},
				})
			}
			parts = append(parts, raw)
		}
	}

	return "/" + strings.Join(parts, "/"), params
}

func anchored(re string) string {
	if re == "" {
		return ""
	}
	return "^(?:" + re + ")$"
}

func operationID(m switchyard.Method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(m)))
	upper := true
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if upper && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	return b.String()
}
