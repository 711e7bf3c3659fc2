package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/embed"
	"github.com/dgallion1/docrank/internal/keywords"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/rank"
	"github.com/dgallion1/docrank/internal/report"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := embed.NewStats(time.Hour)
	model := embed.NewInstrumented(embed.NewHashingEmbedder(64), stats)
	scorer := rank.NewScorer(model, keywords.NewEmbeddingExtractor(model), rank.DefaultWeights, 10)
	p := pipeline.New(scorer, pipeline.Options{Workers: 2}, log)

	cfg := config.Config{
		APIKey:         testKey,
		MaxUploadBytes: 1 << 20,
		Embedding:      config.EmbeddingConfig{Provider: "hashing", Model: "test"},
	}
	srv := httptest.NewServer(NewServer(p, pipeline.NewRunStore(time.Hour), stats, log, cfg))
	t.Cleanup(srv.Close)
	return srv
}

type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, url string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/stats/embed")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/stats/embed", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOutline(t *testing.T) {
	srv := newTestServer(t)
	req := multipartRequest(t, srv.URL+"/api/outline", nil, upload{
		field: "file", name: "guide.md",
		content: "# Guide to the Coast\n\n## 1. Beaches\n\nSand.\n\n## Revision History\n\nv1\n",
	})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var o doctree.Outline
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	assert.Equal(t, "Guide to the Coast", o.Title)
	assert.Equal(t, []doctree.Heading{
		{Level: doctree.H1, Text: "1. Beaches", Page: 1},
		{Level: doctree.H1, Text: "Revision History", Page: 1},
	}, o.Headings)
}

func TestOutline_UnsupportedType(t *testing.T) {
	srv := newTestServer(t)
	req := multipartRequest(t, srv.URL+"/api/outline", nil, upload{field: "file", name: "data.csv", content: "a,b"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRank(t *testing.T) {
	srv := newTestServer(t)
	req := multipartRequest(t, srv.URL+"/api/rank",
		map[string]string{"persona": "Travel Planner", "job_to_be_done": "plan beach days", "top_k": "2"},
		upload{field: "files", name: "b.txt", content: "1. Beaches\nlong sandy beaches\f2. Food\nseafood"},
		upload{field: "files", name: "a.md", content: "# Museums\n\nPaintings and sculpture."},
		upload{field: "files", name: "skip.csv", content: "x"},
	)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep report.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, []string{"a.md", "b.txt"}, rep.Metadata.InputDocuments)
	assert.Equal(t, "Travel Planner", rep.Metadata.Persona)
	assert.Len(t, rep.ExtractedSections, 2)

	runID := resp.Header.Get("X-Run-ID")
	require.NotEmpty(t, runID)

	statusReq, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/runs/"+runID, nil)
	statusReq.Header.Set("Authorization", "Bearer "+testKey)
	statusResp, err := http.DefaultClient.Do(statusReq)
	require.NoError(t, err)
	defer statusResp.Body.Close()

	var snap pipeline.RunSnapshot
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&snap))
	assert.Equal(t, pipeline.StatusCompleted, snap.Status)
	require.Len(t, snap.Skipped, 1)
	assert.Equal(t, "skip.csv", snap.Skipped[0].Document)

	statsReq, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/stats/embed", nil)
	statsReq.Header.Set("Authorization", "Bearer "+testKey)
	statsResp, err := http.DefaultClient.Do(statsReq)
	require.NoError(t, err)
	defer statsResp.Body.Close()
	var stats struct {
		Model string              `json:"model"`
		Stats embed.StatsSnapshot `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, "hashing:test", stats.Model)
	assert.Positive(t, stats.Stats.Count)
}

func TestRank_Validation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name   string
		fields map[string]string
		files  []upload
		status int
	}{
		{"missing persona", map[string]string{"job_to_be_done": "x"}, []upload{{"files", "a.txt", "t"}}, http.StatusBadRequest},
		{"bad top_k", map[string]string{"persona": "p", "job_to_be_done": "x", "top_k": "0"}, []upload{{"files", "a.txt", "t"}}, http.StatusBadRequest},
		{"no files", map[string]string{"persona": "p", "job_to_be_done": "x"}, nil, http.StatusBadRequest},
		{"nothing usable", map[string]string{"persona": "p", "job_to_be_done": "x"}, []upload{{"files", "a.csv", "t"}}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.DefaultClient.Do(multipartRequest(t, srv.URL+"/api/rank", tc.fields, tc.files...))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRunStatus_NotFound(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/runs/nope", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "a_b.pdf", sanitizeFilename("a..b.pdf"))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
}
