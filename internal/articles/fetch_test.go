package articles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>  Breaking News: Go Ships  </title>
  <script>console.log("tracking")</script>
  <style>body { color: red }</style>
</head>
<body>
  <nav>Home | About | Contact</nav>
  <header>Site Header</header>
  <article>
    <p>Go ships a new release.</p>

    <p>Everyone rejoices.</p>
  </article>
  <aside>Related links</aside>
  <footer>Copyright</footer>
  <noscript>Enable JS</noscript>
</body>
</html>`

func TestFetchExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	article, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.NotEmpty(t, article.UID)
	assert.Equal(t, srv.URL, article.URL)
	assert.Equal(t, "Breaking News: Go Ships", article.Title)

	assert.Contains(t, article.Content, "Go ships a new release.")
	assert.Contains(t, article.Content, "Everyone rejoices.")

	// Chrome and non-content tags are stripped.
	assert.NotContains(t, article.Content, "tracking")
	assert.NotContains(t, article.Content, "color: red")
	assert.NotContains(t, article.Content, "Home | About")
	assert.NotContains(t, article.Content, "Site Header")
	assert.NotContains(t, article.Content, "Related links")
	assert.NotContains(t, article.Content, "Copyright")
	assert.NotContains(t, article.Content, "Enable JS")

	// Whitespace is collapsed: no blank lines, no leading/trailing space.
	for _, line := range strings.Split(article.Content, "\n") {
		assert.NotEmpty(t, line)
		assert.Equal(t, strings.TrimSpace(line), line)
	}
}

func TestFetchFreshUIDPerCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>T</title></head><body>b</body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	first, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotEqual(t, first.UID, second.UID)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestFetchRejectsUnsupportedScheme(t *testing.T) {
	_, err := NewFetcher(nil).Fetch(context.Background(), "ftp://example.com/file")
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestFetchUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewFetcher(nil).Fetch(context.Background(), url)
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
