// Package request provides the simulated inbound request a generated
// environment is booted with.
package request

import (
	"context"
	"net/url"
	"strings"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/feature"
)

// ID is the stable identifier of the request feature.
const ID = "Request"

// Kind binds ID to New.
var Kind = feature.Kind{ID: ID, New: func() feature.Feature { return New() }}

// Module implements the feature.Module interface for this package.
type Module struct{}

// Register binds the request kind.
func (m *Module) Register(r *feature.Registry) {
	r.Bind(Kind)
}

// Context is the request value object handed to dependants and to the
// hand-off process.
type Context struct {
	URI    string
	Domain string
	HTTPS  bool
	Method string
}

// Scheme returns "https" or "http".
func (c Context) Scheme() string {
	if c.HTTPS {
		return "https"
	}
	return "http"
}

// BaseURL returns scheme://domain/ with surrounding slashes of the domain
// trimmed.
func (c Context) BaseURL() string {
	return c.Scheme() + "://" + strings.Trim(c.Domain, "/") + "/"
}

// FullURL joins BaseURL and URI.
func (c Context) FullURL() string {
	u, err := url.JoinPath(c.BaseURL(), c.URI)
	if err != nil {
		return c.BaseURL() + strings.TrimLeft(c.URI, "/")
	}
	return u
}

// Environ renders the CGI-style variables the downstream entry script reads.
func (c Context) Environ() []string {
	env := []string{
		"HTTP_HOST=" + c.Domain,
		"SERVER_NAME=" + c.Domain,
		"REQUEST_URI=" + c.URI,
		"REQUEST_METHOD=" + strings.ToUpper(c.Method),
		"SCRIPT_NAME=/index.php",
	}
	if c.HTTPS {
		env = append(env, "HTTPS=on")
	}
	return env
}

// Feature holds the request configuration.
type Feature struct {
	feature.Lifecycle
	ctx Context
}

// New returns a GET request for http://localhost/.
func New() *Feature {
	return &Feature{ctx: Context{URI: "/", Domain: "localhost", Method: "GET"}}
}

// Identifier implements feature.Feature.
func (f *Feature) Identifier() string { return ID }

// Requires implements feature.Feature.
func (f *Feature) Requires() []string { return nil }

// SetURI sets the request URI.
func (f *Feature) SetURI(uri string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.ctx.URI = uri
	return nil
}

// SetDomain sets the host name.
func (f *Feature) SetDomain(domain string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.ctx.Domain = domain
	return nil
}

// SetHTTPS toggles the https scheme.
func (f *Feature) SetHTTPS(https bool) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.ctx.HTTPS = https
	return nil
}

// SetMethod sets the HTTP method. It is upper-cased when rendered.
func (f *Feature) SetMethod(method string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.ctx.Method = method
	return nil
}

// Context returns a copy of the request value object.
func (f *Feature) Context() Context {
	return f.ctx
}

// Execute freezes the request. The rendered environment is consumed by the
// hand-off instead of being written to process globals.
func (f *Feature) Execute(ctx context.Context, _ feature.Executed) error {
	if err := f.Transition(); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Request prepared.", "url", f.ctx.FullURL(), "method", strings.ToUpper(f.ctx.Method))
	return nil
}
