// Package fetcher downloads ingestion payloads and website pages, and parses
// newline-delimited JSON exports into raw records.
package fetcher

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrStatus is returned by GetOK when the final response is not 2xx.
var ErrStatus = eris.New("fetcher: unexpected status")

// Response is a fully read HTTP response.
type Response struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Fetcher performs GET requests.
type Fetcher interface {
	// Get returns the final response after retries. Only transport failures
	// are errors; non-2xx statuses are returned in the Response.
	Get(ctx context.Context, url string) (*Response, error)
}

// GetOK fetches url and fails with ErrStatus unless the response is 2xx.
func GetOK(ctx context.Context, f Fetcher, url string) (*Response, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return resp, eris.Wrapf(ErrStatus, "status %d from %s", resp.Status, url)
	}
	return resp, nil
}
