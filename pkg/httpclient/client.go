// Package httpclient builds the outbound HTTP client used to reach the collector.
package httpclient

import (
	"fmt"
	"net/http"
	"time"
)

const defaultMaxRedirects = 10

type options struct {
	timeout      time.Duration
	maxRedirects int
	transport    http.RoundTripper
}

type Opt func(*options)

// WithTimeout bounds the whole exchange, redirects and body included.
func WithTimeout(d time.Duration) Opt {
	return func(o *options) {
		o.timeout = d
	}
}

// WithMaxRedirects limits how many redirects are followed. Zero disables
// following entirely.
func WithMaxRedirects(n int) Opt {
	return func(o *options) {
		o.maxRedirects = n
	}
}

func WithTransport(rt http.RoundTripper) Opt {
	return func(o *options) {
		o.transport = rt
	}
}

// NewHTTPClient returns a client without a cookie jar, so nothing set by one
// response is replayed on a later request.
func NewHTTPClient(opts ...Opt) *http.Client {
	o := options{
		maxRedirects: defaultMaxRedirects,
		transport:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &http.Client{
		Timeout:   o.timeout,
		Transport: o.transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > o.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", o.maxRedirects)
			}
			return nil
		},
	}
}
