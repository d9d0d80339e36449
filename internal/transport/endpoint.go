package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes a single API call: where to send it and what to send.
// The zero value of optional fields is "not set".
type Endpoint struct {
	// BaseURL is the scheme+host part, e.g. "https://api.moim.app".
	// When empty, the pipeline's configured base URL is used.
	BaseURL string
	// Path is the request path, e.g. "/api/auth/sns-login".
	Path string
	// Method is the HTTP method. Defaults to GET when empty.
	Method string
	// Header holds additional request headers. An Authorization header
	// set here suppresses the pipeline's bearer injection.
	Header http.Header
	// Query holds URL query parameters.
	Query url.Values
	// Body is the request body, JSON-encoded when non-nil.
	Body any
}

// url builds the full request URL against the given default base.
func (e Endpoint) url(defaultBase string) (string, error) {
	base := e.BaseURL
	if base == "" {
		base = defaultBase
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + e.Path)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host in %q", u.String())
	}
	if len(e.Query) > 0 {
		u.RawQuery = e.Query.Encode()
	}
	return u.String(), nil
}

// method returns the HTTP method, defaulting to GET.
func (e Endpoint) method() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return e.Method
}
