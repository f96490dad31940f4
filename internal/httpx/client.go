// Package httpx builds the outbound HTTP clients shared by extractors and
// the translator. Every client carries a browser-like identity, a hard
// timeout and a token-bucket limiter so calls to one origin stay paced.
package httpx

import (
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// BrowserUserAgent is sent on every scrape and API call. Several of the
	// security-news origins refuse default Go client identities.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultTimeout bounds a single request; no call in the pipeline blocks
	// past it.
	DefaultTimeout = 25 * time.Second
)

// NewClient returns a resty client with the shared identity and timeout.
// interval > 0 installs a limiter that spaces requests at least that far
// apart; the wait honors the request context.
func NewClient(interval time.Duration) *resty.Client {
	c := resty.New().
		SetTimeout(DefaultTimeout).
		SetHeader("User-Agent", BrowserUserAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRetryCount(0)

	if interval > 0 {
		lim := rate.NewLimiter(rate.Every(interval), 1)
		c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return lim.Wait(req.Context())
		})
	}
	return c
}

// NewAPIClient is NewClient plus a JSON Accept header, for the REST-style
// origins (NVD, GitHub, WordPress APIs).
func NewAPIClient(interval time.Duration) *resty.Client {
	return NewClient(interval).SetHeader("Accept", "application/json")
}
