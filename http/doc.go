// Package http serves a switchyard.Dispatcher over net/http.
//
// The Adapter converts each *http.Request into a switchyard.Request,
// negotiating the body by content type:
//
//   - application/json and anything unrecognised: raw bytes
//   - application/x-www-form-urlencoded: form values
//   - multipart/form-data: form values and files
//
// Bodies are bounded by AdapterConfig.MaxUploadSize. The dispatch outcome is
// written back as is for responses; other outcomes become JSON error bodies
// of the form {"error": code, "message": text}. Clients accepting text/html
// get an HTML page for unmatched routes.
//
// NewRouter wraps the adapter in a chi router that adds request ids, real
// IP resolution, panic recovery and optional CORS, plus:
//
//	GET /_/health       liveness check
//	GET /_/routes       registered route table
//	GET /api-docs       OpenAPI document (JSON)
//	GET /api-docs.yaml  OpenAPI document (YAML)
//
// ErrorHandler maps collaborator errors (not found, invalid input, token
// failures) to JSON error responses and is meant to be registered with
// Registry.UseError.
package http
