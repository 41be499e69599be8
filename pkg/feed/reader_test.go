package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/wire-harvester/pkg/httpclient"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>All News Releases</title>
  <link>http://www.prnewswire.com/</link>
  <item>
    <title>Caterpillar Reports Record Quarter</title>
    <link>http://www.prnewswire.com/news-releases/a-1.html</link>
    <pubDate>Mon, 24 Oct 2011 08:00:00 GMT</pubDate>
    <category>Manufacturing</category>
  </item>
  <item>
    <title>No link</title>
  </item>
  <item>
    <title>Second</title>
    <link> http://www.prnewswire.com/news-releases/b-2.html </link>
  </item>
  <item>
    <title>Duplicate</title>
    <link>http://www.prnewswire.com/news-releases/a-1.html</link>
  </item>
</channel>
</rss>`

const sitemapIndexFixture = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{base}}/news-sitemap.xml</loc></sitemap>
  <sitemap><loc>{{base}}/sitemap-index.xml</loc></sitemap>
</sitemapindex>`

const newsSitemapFixture = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:news="http://www.google.com/schemas/sitemap-news/0.9">
  <url>
    <loc>http://www.prnewswire.com/news-releases/c-3.html</loc>
    <news:news>
      <news:publication_date>2011-10-26T09:00:00Z</news:publication_date>
      <news:title>Anuncio</news:title>
      <news:keywords>Finanzas, Banca</news:keywords>
    </news:news>
  </url>
</urlset>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFixture))
	})
	mux.HandleFunc("/sitemap-index.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(sitemapIndexFixture, "{{base}}", srv.URL)))
	})
	mux.HandleFunc("/news-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsSitemapFixture))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not a feed</body></html>"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestReader() Reader {
	return NewReader(httpclient.NewRestyClient(5*time.Second, "wire-harvester-test"), nil)
}

func TestReadRSS(t *testing.T) {
	srv := newFeedServer(t)

	items, err := newTestReader().Read(context.Background(), srv.URL+"/rss")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "http://www.prnewswire.com/news-releases/a-1.html", items[0].Link)
	assert.Equal(t, "Caterpillar Reports Record Quarter", items[0].Title)
	assert.Equal(t, []string{"Manufacturing"}, items[0].Keywords)
	assert.Equal(t, 2011, items[0].Published.Year())
	assert.Equal(t, "http://www.prnewswire.com/news-releases/b-2.html", items[1].Link)
	assert.Equal(t, items[0].Link, items[2].Link, "duplicates are left to the caller")
}

func TestReadSitemapIndex(t *testing.T) {
	srv := newFeedServer(t)

	items, err := newTestReader().Read(context.Background(), srv.URL+"/sitemap-index.xml")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "http://www.prnewswire.com/news-releases/c-3.html", items[0].Link)
	assert.Equal(t, "Anuncio", items[0].Title)
	assert.Equal(t, []string{"Finanzas", "Banca"}, items[0].Keywords)
	assert.True(t, time.Date(2011, time.October, 26, 9, 0, 0, 0, time.UTC).Equal(items[0].Published))
}

func TestReadErrors(t *testing.T) {
	srv := newFeedServer(t)
	r := newTestReader()

	_, err := r.Read(context.Background(), srv.URL+"/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")

	_, err = r.Read(context.Background(), srv.URL+"/garbage")
	assert.Error(t, err)

	_, err = r.Read(context.Background(), " ")
	assert.Error(t, err)
}

func TestParseKeywords(t *testing.T) {
	assert.Nil(t, parseKeywords(" , "))
	assert.Equal(t, []string{"a", "b"}, parseKeywords("a, ,b"))
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", responseSnippet([]byte("  ")))
	assert.Len(t, responseSnippet([]byte(strings.Repeat("x", 600))), 515)
}
