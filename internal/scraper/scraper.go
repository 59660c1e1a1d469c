package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/naykakashima/timetable-api/internal/models"
)

// Scraper fetches a student's timetable page and converts it into calendar
// events. It holds no state between calls; concurrent use is safe.
type Scraper struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// New constructs a Scraper with the given fetch timeout and User-Agent.
func New(timeout time.Duration, userAgent string, logger *zap.Logger) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Scrape fetches the document at url and extracts its events against
// referenceYear. Retries and backoff are the caller's concern.
func (s *Scraper) Scrape(ctx context.Context, url string, referenceYear int) ([]models.TimetableEvent, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	events, err := Extract(doc, referenceYear)
	if err != nil {
		s.logger.Warn("timetable extraction failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("timetable scraped", zap.Int("events", len(events)))
	return events, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return doc, nil
}

// Extract converts a parsed timetable document into calendar events in
// document order. referenceYear anchors ISO week numbers; zero means the
// current year. Extraction is all-or-nothing: the first ParseError discards
// everything accumulated so far.
func Extract(doc *goquery.Document, referenceYear int) ([]models.TimetableEvent, error) {
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	sessions, err := ParseGrid(doc)
	if err != nil {
		return nil, err
	}

	var events []models.TimetableEvent
	for _, ds := range sessions {
		expanded, err := Expand(ds.Session, ds.Day, referenceYear)
		if err != nil {
			return nil, err
		}
		events = append(events, expanded...)
	}
	return events, nil
}
