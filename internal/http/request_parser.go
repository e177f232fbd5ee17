package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// RequestBodyParser extracts values from a request body, accepting either
// JSON or form-encoded payloads. HTMX submits forms, API clients send JSON.
type RequestBodyParser struct {
	values map[string]string
}

// ParseRequestBody reads the request body and returns a parser over its values.
func ParseRequestBody(r *http.Request) (*RequestBodyParser, error) {
	p := &RequestBodyParser{values: make(map[string]string)}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, err
		}
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				p.values[k] = val
			case float64:
				p.values[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				p.values[k] = strconv.FormatBool(val)
			}
		}
		return p, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			p.values[k] = vs[0]
		}
	}
	return p, nil
}

// Get returns the sanitized value for key, or empty string when absent.
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.values[key])
}

// GetRaw returns the value for key without sanitization.
func (p *RequestBodyParser) GetRaw(key string) string {
	return p.values[key]
}

// Has reports whether the request body contained the key.
func (p *RequestBodyParser) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// RequireMethod writes a 405 response and returns false when the request
// method is not among the allowed ones.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	MethodNotAllowedError(strings.Join(methods, ", ")).Write(w)
	return false
}

// RequirePOST ensures the request is a POST.
func RequirePOST(w http.ResponseWriter, r *http.Request) bool {
	return RequireMethod(w, r, http.MethodPost)
}

// RequireDeleteOrPOST accepts DELETE or POST, covering both HTMX hx-delete
// and plain form submissions.
func RequireDeleteOrPOST(w http.ResponseWriter, r *http.Request) bool {
	return RequireMethod(w, r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail parses the request body and writes a 400 on failure.
// Returns nil when parsing failed and the response has been sent.
func ParseFormOrFail(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	parser, err := ParseRequestBody(r)
	if err != nil {
		BadRequestError("Invalid request body").Write(w)
		return nil
	}
	return parser
}
