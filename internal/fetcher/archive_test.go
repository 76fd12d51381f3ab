package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jemtv/storyfeed/internal/config"
	"github.com/jemtv/storyfeed/internal/model"
)

func setupArchive(t *testing.T, handler http.Handler, env map[string]string,
) *ArchiveClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	os.Clearenv()
	t.Setenv("ARCHIVE_URL", srv.URL)
	t.Setenv("FETCH_RATE_LIMIT", "1000")
	for k, v := range env {
		t.Setenv(k, v)
	}
	require.NoError(t, config.Load(""))
	return NewArchiveClient()
}

func pageHandler(totalPages int, requests *[]url.Values) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if requests != nil {
			*requests = append(*requests, q)
		}
		page, _ := strconv.Atoi(q.Get("page"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": page * 10, "name": fmt.Sprintf("Story %d", page)},
			},
			"meta": map[string]any{"total_pages": totalPages},
		})
	})
}

func TestArchiveClient_FetchAll(t *testing.T) {
	var requests []url.Values
	client := setupArchive(t, pageHandler(3, &requests), nil)

	stories, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 3)
	assert.Equal(t, model.Scalar("10"), stories[0].ID)
	assert.Equal(t, "Story 3", stories[2].Name)

	require.Len(t, requests, 3)
	assert.Equal(t, "1", requests[0].Get("page"))
	assert.Equal(t, "50", requests[0].Get("results_per_page"))
	assert.Equal(t, "en", requests[0].Get("language"))
	assert.Equal(t, "3", requests[2].Get("page"))
}

func TestArchiveClient_FetchAllPartial(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		pageHandler(3, nil).ServeHTTP(w, r)
	})
	client := setupArchive(t, handler, nil)

	stories, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "page 2")
	assert.Len(t, stories, 1, "stories fetched before the failure are kept")
}

func TestArchiveClient_FetchAllEmpty(t *testing.T) {
	var requests []url.Values
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"meta":{"total_pages":5}}`))
	})
	client := setupArchive(t, handler, nil)

	stories, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stories)
	assert.Len(t, requests, 1, "an empty page ends the walk")
}

func TestArchiveClient_FetchAllNoMeta(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"a-1"}]}`))
	})
	client := setupArchive(t, handler, nil)

	stories, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 1, "missing meta means a single page")
	assert.Equal(t, model.Scalar("a-1"), stories[0].ID)
}

func TestArchiveClient_FetchAllMaxPages(t *testing.T) {
	var requests []url.Values
	client := setupArchive(t, pageHandler(10, &requests),
		map[string]string{"MAX_PAGES": "2"})

	stories, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, stories, 2)
	assert.Len(t, requests, 2)
}

func TestArchiveClient_FetchAllBadJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	})
	client := setupArchive(t, handler, nil)

	stories, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode archive page")
	assert.Empty(t, stories)
}

func TestArchiveClient_pageURL(t *testing.T) {
	client := &ArchiveClient{
		baseURL:        "https://example.org/api?v=1",
		language:       "en",
		resultsPerPage: 25,
	}

	u, err := client.pageURL(2)
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "1", q.Get("v"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "25", q.Get("results_per_page"))
	assert.Equal(t, "en", q.Get("language"))
}
