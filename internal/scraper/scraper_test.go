package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scrapePage = `<html><body>
<p><span class="labelone">Monday</span></p>
<table>
<tr><td>Activity</td><td>Module</td><td>Type</td><td>Start</td><td>End</td><td>Duration</td><td>Weeks</td><td>Staff</td><td>Room</td></tr>
<tr><td>MA32007 L1</td><td>Numerical Analysis</td><td>Lecture</td><td>9:00</td><td>10:00</td><td>1:00</td><td>12-13</td><td>Dr F Bierman</td><td>Fulton G20</td></tr>
</table>
</body></html>`

func TestScrapeFetchesAndExtracts(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(scrapePage))
	}))
	defer srv.Close()

	s := New(5*time.Second, "Mozilla/5.0", zap.NewNop())
	events, err := s.Scrape(context.Background(), srv.URL, 2025)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Mozilla/5.0", gotUserAgent)
	assert.Equal(t, "MA32007-12-1-09:00", events[0].UID)
}

func TestScrapeNonOKStatusIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(5*time.Second, "", nil)
	_, err := s.Scrape(context.Background(), srv.URL, 2025)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, srv.URL, fe.URL)
}

func TestScrapeUnreachableHostIsFetchError(t *testing.T) {
	s := New(time.Second, "", nil)
	_, err := s.Scrape(context.Background(), "http://127.0.0.1:1", 2025)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}

func TestScrapeParseErrorSurfacesUnwrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p><span class="labelone">Funday</span></p><table><tr></tr></table></body></html>`))
	}))
	defer srv.Close()

	s := New(5*time.Second, "", nil)
	_, err := s.Scrape(context.Background(), srv.URL, 2025)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, UnknownWeekday, pe.Kind)
}
