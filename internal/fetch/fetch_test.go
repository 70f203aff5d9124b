package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/newsgrid/internal/fetch"
)

func TestFetchSendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("<rss></rss>"))
	}))
	defer srv.Close()

	res := fetch.New(time.Second).Fetch(context.Background(), srv.URL)
	require.True(t, res.OK)
	assert.Equal(t, "<rss></rss>", res.Body)
	assert.Equal(t, fetch.UserAgent, gotUA)
	assert.Equal(t, fetch.AcceptFeeds, gotAccept)
}

func TestFetchReplacesInvalidBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\xef\xbb\xbfcaf\xe9 ok"))
	}))
	defer srv.Close()

	res := fetch.New(time.Second).Fetch(context.Background(), srv.URL)
	require.True(t, res.OK)
	assert.Equal(t, "caf\uFFFD ok", res.Body)
}

func TestFetchMisses(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	tests := []struct {
		name string
		url  string
	}{
		{name: "timeout", url: slow.URL},
		{name: "not found", url: notFound.URL},
		{name: "bad url", url: "://nope"},
		{name: "connection refused", url: "http://127.0.0.1:1/feed"},
	}

	f := fetch.New(100 * time.Millisecond)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Fetch(context.Background(), tt.url)
			assert.False(t, res.OK)
			assert.Empty(t, res.Body)
			assert.Error(t, res.Err)
		})
	}
}
