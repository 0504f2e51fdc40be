package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-ingest/internal/fetcher"
	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/pipeline"
	"github.com/sells-group/lead-ingest/internal/store"
)

type liveChecker struct{}

func (liveChecker) Check(_ context.Context, url string) *model.WebsiteCheck {
	return &model.WebsiteCheck{URL: url, Status: http.StatusOK, Score: 90, Reachable: true}
}

const janePayload = `{"email":"jane@acme.io","first_name":"Jane","last_name":"Doe","organization":{"website":"https://acme.io"}}` + "\n"

// newTestPipeline returns a pipeline backed by a temp SQLite store and an
// export server that serves body at /export.ndjson.
func newTestPipeline(t *testing.T, body string) (*pipeline.Pipeline, string) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "cmd.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export.ndjson" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	p := pipeline.New(pipeline.Deps{
		Fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1}),
		Store:   st,
		Checker: liveChecker{},
	}, pipeline.Options{})
	return p, srv.URL
}
