package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/naykakashima/timetable-api/internal/models"
	"github.com/naykakashima/timetable-api/internal/scraper"
	"github.com/naykakashima/timetable-api/pkg/config"
	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
)

type eventRepository interface {
	Upsert(ctx context.Context, event *models.TimetableEvent) error
	Create(ctx context.Context, event *models.TimetableEvent) error
	ListByUser(ctx context.Context, userID string) ([]models.TimetableEvent, error)
}

type eventCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type timetableScraper interface {
	Scrape(ctx context.Context, url string, referenceYear int) ([]models.TimetableEvent, error)
}

type refreshUserLister interface {
	ListWithStudentID(ctx context.Context) ([]models.User, error)
}

type importObserver interface {
	ObserveImport(outcome string, events int, duration time.Duration)
	RecordCacheOperation(hit bool)
}

type noopObserver struct{}

func (noopObserver) ObserveImport(string, int, time.Duration) {}
func (noopObserver) RecordCacheOperation(bool)                {}

// TimetableService orchestrates importing a student's timetable from the
// upstream reporting endpoint into the event store.
type TimetableService struct {
	events  eventRepository
	users   refreshUserLister
	cache   eventCache
	scraper timetableScraper
	cfg     config.ScraperConfig
	metrics importObserver
	logger  *zap.Logger

	// loadFixture is swappable so tests can inject canned events.
	loadFixture func() []models.TimetableEvent
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(
	events eventRepository,
	users refreshUserLister,
	cache eventCache,
	sc timetableScraper,
	cfg config.ScraperConfig,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		events:  events,
		users:   users,
		cache:   cache,
		scraper: sc,
		cfg:     cfg,
		metrics: noopObserver{},
		logger:  logger,
		loadFixture: func() []models.TimetableEvent {
			return scraper.LoadFixture(logger)
		},
	}
}

// WithMetrics attaches an instrumentation sink.
func (s *TimetableService) WithMetrics(m importObserver) *TimetableService {
	if m != nil {
		s.metrics = m
	}
	return s
}

func eventsCacheKey(userID string) string {
	return "events:user:" + userID
}

// buildURL assembles the reporting endpoint query for one student. The
// identifier carries a "/1" suffix, the upstream convention for the first
// student-set instance.
func (s *TimetableService) buildURL(studentID string) string {
	q := url.Values{}
	q.Set("objectclass", s.cfg.ObjectClass)
	q.Set("idtype", "id")
	q.Set("identifier", studentID+"/1")
	q.Set("t", s.cfg.Template)
	q.Set("days", s.cfg.Days)
	q.Set("weeks", s.cfg.Weeks)
	q.Set("periods", s.cfg.Periods)
	q.Set("template", s.cfg.Template)
	return s.cfg.BaseURL + "?" + q.Encode()
}

// Import fetches and stores the timetable for one user. Every produced event
// is upserted, so re-importing the same timetable is idempotent. Depending on
// configuration the bundled fixture can replace or back up the live scrape.
func (s *TimetableService) Import(ctx context.Context, userID, studentID string) ([]models.TimetableEvent, error) {
	started := time.Now()
	var events []models.TimetableEvent

	if s.cfg.FixtureMode {
		events = s.loadFixture()
	} else {
		scraped, err := s.scraper.Scrape(ctx, s.buildURL(studentID), s.cfg.ReferenceYear)
		if err != nil {
			var parseErr *scraper.ParseError
			var fetchErr *scraper.FetchError
			switch {
			case errors.As(err, &parseErr):
				s.logger.Warn("timetable parse failed",
					zap.String("user_id", userID),
					zap.String("kind", string(parseErr.Kind)),
					zap.String("value", parseErr.Value))
			case errors.As(err, &fetchErr):
				s.logger.Warn("timetable fetch failed",
					zap.String("user_id", userID),
					zap.String("url", fetchErr.URL),
					zap.Error(fetchErr.Err))
			default:
				s.logger.Warn("timetable import failed", zap.String("user_id", userID), zap.Error(err))
			}

			if !s.cfg.FallbackToFixture {
				s.metrics.ObserveImport("failed", 0, time.Since(started))
				return nil, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, appErrors.ErrImportFailed.Message)
			}
			s.logger.Info("falling back to bundled timetable fixture", zap.String("user_id", userID))
			events = s.loadFixture()
		} else {
			events = scraped
		}
	}

	stored := make([]models.TimetableEvent, 0, len(events))
	for i := range events {
		event := events[i]
		event.UserID = userID
		if err := s.events.Upsert(ctx, &event); err != nil {
			s.metrics.ObserveImport("failed", 0, time.Since(started))
			return nil, fmt.Errorf("store imported event %s: %w", event.UID, err)
		}
		stored = append(stored, event)
	}

	if err := s.cache.Delete(ctx, eventsCacheKey(userID)); err != nil {
		s.logger.Warn("event cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}

	s.metrics.ObserveImport("success", len(stored), time.Since(started))
	s.logger.Info("timetable imported",
		zap.String("user_id", userID),
		zap.Int("events", len(stored)))
	return stored, nil
}

// CreateEvent stores a manually entered event for a user.
func (s *TimetableService) CreateEvent(ctx context.Context, userID string, event *models.TimetableEvent) error {
	event.UserID = userID
	if event.UID == "" {
		event.UID = fmt.Sprintf("manual-%d", event.StartTime.Unix())
	}
	if err := s.events.Create(ctx, event); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, eventsCacheKey(userID)); err != nil {
		s.logger.Warn("event cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// ListByUser returns a user's events ordered by start time, served from
// cache when possible.
func (s *TimetableService) ListByUser(ctx context.Context, userID string) ([]models.TimetableEvent, error) {
	key := eventsCacheKey(userID)

	var cached []models.TimetableEvent
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordCacheOperation(true)
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("event cache read failed", zap.String("user_id", userID), zap.Error(err))
	}
	s.metrics.RecordCacheOperation(false)

	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.TimetableEvent{}
	}

	if err := s.cache.Set(ctx, key, events, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("event cache write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return events, nil
}

// RefreshAll re-imports the timetable for every active user linked to a
// student ID. One user's failure does not stop the sweep.
func (s *TimetableService) RefreshAll(ctx context.Context) error {
	users, err := s.users.ListWithStudentID(ctx)
	if err != nil {
		return fmt.Errorf("list users for refresh: %w", err)
	}

	var failed int
	for _, user := range users {
		if _, err := s.Import(ctx, user.ID, user.StudentID); err != nil {
			failed++
			s.logger.Warn("scheduled refresh failed for user",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("scheduled timetable refresh finished",
		zap.Int("users", len(users)),
		zap.Int("failed", failed))
	return nil
}
