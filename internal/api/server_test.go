package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amaumene/goflicks/internal/api"
	"github.com/amaumene/goflicks/internal/config"
	"github.com/amaumene/goflicks/internal/models"
	"github.com/amaumene/goflicks/internal/services/auth"
	"github.com/amaumene/goflicks/internal/services/imdb"
	"github.com/sirupsen/logrus"
)

type stubVerifier struct {
	uid string
	err error
}

func (s stubVerifier) Verify(ctx context.Context, token string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.uid, nil
}

func newTestServer(t *testing.T, verifier auth.Verifier, upstream http.HandlerFunc) *httptest.Server {
	t.Helper()

	if upstream == nil {
		upstream = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected upstream call: %s", r.URL.Path)
		}
	}
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{
		IMDbAPIKey: "testkey",
		IMDbAPIURL: up.URL,
		ServerPort: "0",
	}

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "goflicks.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	catalog, err := imdb.NewClient(cfg, logger)
	if err != nil {
		t.Fatalf("failed to create catalog client: %v", err)
	}

	server := httptest.NewServer(api.NewServer(cfg, db, catalog, verifier, logger).Handler())
	t.Cleanup(server.Close)

	return server
}

func doRequest(t *testing.T, server *httptest.Server, method, path, token string, body []byte) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	return resp, payload
}

func decodeMap(t *testing.T, payload []byte) map[string]interface{} {
	t.Helper()

	var m map[string]interface{}
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("failed to decode %s: %v", payload, err)
	}
	return m
}

const bearer = "Bearer sometoken"

func TestMissingAuthorizationHeader(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, nil)

	resp, payload := doRequest(t, server, http.MethodGet, "/watchlist", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if m := decodeMap(t, payload); m["message"] != "Auth Error: Missing authorization header" {
		t.Errorf("unexpected message: %v", m["message"])
	}
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, nil)

	for _, header := range []string{"sometoken", "Bearer "} {
		resp, payload := doRequest(t, server, http.MethodGet, "/watchlist", header, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, resp.StatusCode)
		}
		if m := decodeMap(t, payload); m["message"] != "Auth Error: Invalid ID token" {
			t.Errorf("header %q: unexpected message: %v", header, m["message"])
		}
	}
}

func TestUnverifiableToken(t *testing.T) {
	server := newTestServer(t, stubVerifier{err: auth.ErrInvalidToken}, nil)

	resp, payload := doRequest(t, server, http.MethodGet, "/watchlist", bearer, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if m := decodeMap(t, payload); m["message"] != "Auth Error: Invalid ID token" {
		t.Errorf("unexpected message: %v", m["message"])
	}
}

func TestHealthNeedsNoAuth(t *testing.T) {
	server := newTestServer(t, stubVerifier{err: auth.ErrInvalidToken}, nil)

	resp, _ := doRequest(t, server, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMetricsNeedsNoAuth(t *testing.T) {
	server := newTestServer(t, stubVerifier{err: auth.ErrInvalidToken}, nil)

	resp, _ := doRequest(t, server, http.MethodGet, "/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCreateWatchlistTwice(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, nil)

	resp, payload := doRequest(t, server, http.MethodPost, "/watchlist", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	m := decodeMap(t, payload)
	if m["_id"] != "user1" || m["message"] != "successfully created" {
		t.Errorf("unexpected create response: %v", m)
	}

	resp, payload = doRequest(t, server, http.MethodPost, "/watchlist", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on second create, got %d", resp.StatusCode)
	}
	m = decodeMap(t, payload)
	if m["message"] != "watchlist already exists" {
		t.Errorf("unexpected second create response: %v", m)
	}
}

func TestWatchlistLifecycle(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, nil)

	if resp, _ := doRequest(t, server, http.MethodPost, "/watchlist", bearer, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("create failed: %d", resp.StatusCode)
	}

	movie := []byte(`{
		"id": "tt0133093",
		"image": "https://example.com/matrix.jpg",
		"fullTitle": "The Matrix (1999)",
		"runtimeStr": "2h 16min",
		"genres": "Action, Sci-Fi",
		"imDbRating": "8.7",
		"metacriticRating": "73",
		"boxOffice": {"budget": "$63,000,000 (estimated)", "openingWeekendUSA": "$27,788,331", "grossUSA": "$172,076,928", "cumWorldwideGross": "$467,222,728"},
		"contentRating": "R",
		"plot": "A computer hacker learns the truth."
	}`)

	resp, payload := doRequest(t, server, http.MethodPut, "/watchlist/add", bearer, movie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add failed: %d %s", resp.StatusCode, payload)
	}
	if m := decodeMap(t, payload); m["message"] != "successfully added movie to watchlist" {
		t.Errorf("unexpected add response: %v", m)
	}

	resp, payload = doRequest(t, server, http.MethodGet, "/watchlist", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get all failed: %d", resp.StatusCode)
	}
	var movies []models.Movie
	if err := json.Unmarshal(payload, &movies); err != nil {
		t.Fatalf("failed to decode watchlist: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != "tt0133093" {
		t.Fatalf("unexpected watchlist: %+v", movies)
	}
	if movies[0].BoxOffice.GrossUSA != "$172,076,928" {
		t.Errorf("box office not round-tripped: %+v", movies[0].BoxOffice)
	}

	resp, payload = doRequest(t, server, http.MethodGet, "/watchlist/tt0133093", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get one failed: %d", resp.StatusCode)
	}
	var single models.Movie
	if err := json.Unmarshal(payload, &single); err != nil {
		t.Fatalf("failed to decode movie: %v", err)
	}
	if single.FullTitle != "The Matrix (1999)" {
		t.Errorf("unexpected movie: %+v", single)
	}

	resp, payload = doRequest(t, server, http.MethodPut, "/watchlist/delete", bearer, []byte(`{"id":"tt0133093"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete failed: %d", resp.StatusCode)
	}
	if m := decodeMap(t, payload); m["message"] != "successfully deleted movie from watchlist" {
		t.Errorf("unexpected delete response: %v", m)
	}

	// Now absent from the list: empty object sentinel, still 200.
	resp, payload = doRequest(t, server, http.MethodGet, "/watchlist/tt0133093", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get one after delete failed: %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(payload)) != "{}" {
		t.Errorf("expected empty object, got %s", payload)
	}
}

func TestMutationsWithoutWatchlist(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "ghost"}, nil)

	resp, payload := doRequest(t, server, http.MethodPut, "/watchlist/add", bearer, []byte(`{"id":"tt0133093"}`))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	m := decodeMap(t, payload)
	if m["message"] != "error - watchlist not found" || m["_id"] != "ghost" {
		t.Errorf("unexpected response: %v", m)
	}

	if resp, _ := doRequest(t, server, http.MethodGet, "/watchlist", bearer, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get all: expected 404, got %d", resp.StatusCode)
	}
}

func TestGetTitleNotFound(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"tt_invalid","errorMessage":"Invalid ID supplied"}`))
	})

	resp, payload := doRequest(t, server, http.MethodGet, "/movies/tt_invalid", bearer, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	m := decodeMap(t, payload)
	if m["_id"] != "tt_invalid" || m["status"] != float64(404) || m["message"] != "error - movie not found" {
		t.Errorf("unexpected response: %v", m)
	}
}

func TestGetTitlePassThrough(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"tt0133093","fullTitle":"The Matrix (1999)","errorMessage":null}`))
	})

	resp, payload := doRequest(t, server, http.MethodGet, "/movies/tt0133093", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if m := decodeMap(t, payload); m["fullTitle"] != "The Matrix (1999)" {
		t.Errorf("expected pass-through payload, got %v", m)
	}
}

func TestSearchNoResults(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"expression":"zzzz","results":[]}`))
	})

	resp, payload := doRequest(t, server, http.MethodGet, "/movies?expression=zzzz", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	m := decodeMap(t, payload)
	if m["message"] != "No results found." {
		t.Errorf("unexpected message: %v", m)
	}
	if _, present := m["results"]; present {
		t.Errorf("no-results response must not carry a results key: %v", m)
	}
}

func TestSearchEmptyExpressionSkipsUpstream(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, nil)

	resp, payload := doRequest(t, server, http.MethodGet, "/movies?expression=", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if m := decodeMap(t, payload); m["message"] != "No results found." {
		t.Errorf("unexpected message: %v", m)
	}
}

func TestUpstreamFailureIsUniform500(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for _, path := range []string{"/movies/tt0133093", "/movies?expression=matrix", "/top-movies", "/trailer/tt0133093"} {
		resp, payload := doRequest(t, server, http.MethodGet, path, bearer, nil)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", path, resp.StatusCode)
			continue
		}
		if m := decodeMap(t, payload); m["message"] != "error - internal server error: cannot send request" {
			t.Errorf("%s: unexpected message: %v", path, m)
		}
	}
}

func TestTrailerPassThrough(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"videoId":"vi12345","linkEmbed":"https://example.com/embed/vi12345","errorMessage":""}`))
	})

	resp, payload := doRequest(t, server, http.MethodGet, "/trailer/tt0133093", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if m := decodeMap(t, payload); m["linkEmbed"] != "https://example.com/embed/vi12345" {
		t.Errorf("unexpected payload: %v", m)
	}
}

func TestTopMoviesPassThrough(t *testing.T) {
	server := newTestServer(t, stubVerifier{uid: "user1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":"tt0111161","rank":"1","title":"The Shawshank Redemption"}]}`))
	})

	resp, payload := doRequest(t, server, http.MethodGet, "/top-movies", bearer, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(payload), "tt0111161") {
		t.Errorf("expected ranking payload, got %s", payload)
	}
}
