package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devskill-org/stargazing/catalog"
	"github.com/devskill-org/stargazing/celestial"
	"github.com/devskill-org/stargazing/forecast"
	"github.com/devskill-org/stargazing/logger"
	"github.com/devskill-org/stargazing/meteo"
	"github.com/devskill-org/stargazing/metrics"
	"github.com/devskill-org/stargazing/openmeteo"
	"github.com/devskill-org/stargazing/resilience"
	"github.com/devskill-org/stargazing/scoring"
	"github.com/devskill-org/stargazing/seventimer"
)

// ForecastScheduler periodically fetches, normalizes and scores the provider forecasts
type ForecastScheduler struct {
	// Configuration
	config *Config

	// Providers
	openMeteo  *openmeteo.Client
	sevenTimer *seventimer.Client
	metNorway  *meteo.Client

	// State
	cache      *ForecastCache
	lastErrors map[forecast.Source]string
	isRunning  bool
	stopChan   chan struct{}
	mu         sync.RWMutex

	sky       *catalog.Sky
	store     *Store
	webServer *WebServer
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger

	now func() time.Time
}

// NewForecastScheduler creates a new scheduler instance
func NewForecastScheduler(config *Config, log *zap.SugaredLogger) *ForecastScheduler {
	log = logger.OrNop(log)
	m := metrics.New()

	httpClient := &http.Client{Timeout: config.APITimeout}
	opts := []resilience.Option{resilience.WithMetrics(m), resilience.WithLogger(log)}

	om := openmeteo.NewClientWithHTTPClient(httpClient, config.UserAgent, opts...)
	if config.OpenMeteoURL != "" {
		om.SetBaseURL(config.OpenMeteoURL)
	}
	st := seventimer.NewClientWithHTTPClient(httpClient, config.UserAgent, opts...)
	if config.SevenTimerURL != "" {
		st.SetBaseURL(config.SevenTimerURL)
	}
	mn := meteo.NewClientWithHTTPClient(httpClient, config.UserAgent, opts...)
	if config.MetNorwayURL != "" {
		mn.SetBaseURL(config.MetNorwayURL)
	}

	return &ForecastScheduler{
		config:     config,
		openMeteo:  om,
		sevenTimer: st,
		metNorway:  mn,
		cache:      NewForecastCache(config.CacheDuration),
		lastErrors: make(map[forecast.Source]string),
		stopChan:   make(chan struct{}),
		metrics:    m,
		logger:     log,
		now:        time.Now,
	}
}

// NewForecastSchedulerWithWebServer creates a new scheduler instance serving the HTTP API
func NewForecastSchedulerWithWebServer(config *Config, log *zap.SugaredLogger) *ForecastScheduler {
	s := NewForecastScheduler(config, log)
	s.webServer = NewWebServer(s, config.HTTPPort)
	return s
}

// SetSky attaches the catalogs used by the deep-sky endpoint
func (s *ForecastScheduler) SetSky(sky *catalog.Sky) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sky = sky
}

// SetStore attaches persistence. A nil store disables it.
func (s *ForecastScheduler) SetStore(store *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// GetConfig returns the current configuration
func (s *ForecastScheduler) GetConfig() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Sky returns the attached catalogs, nil when none were loaded
func (s *ForecastScheduler) Sky() *catalog.Sky {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sky
}

// Metrics returns the collectors of the scheduler and its providers
func (s *ForecastScheduler) Metrics() *metrics.Metrics {
	return s.metrics
}

// Observer returns the configured observing site
func (s *ForecastScheduler) Observer() celestial.Observer {
	c := s.GetConfig()
	return celestial.Observer{Latitude: c.Latitude, Longitude: c.Longitude, Elevation: c.Elevation}
}

// Sources lists the providers fetched on every refresh
func (s *ForecastScheduler) Sources() []forecast.Source {
	sources := []forecast.Source{forecast.SourceOpenMeteo, forecast.SourceSevenTimer}
	if s.GetConfig().EnableMetNorway {
		sources = append(sources, forecast.SourceMetNorway)
	}
	return sources
}

// Start begins the scheduler's periodic task
func (s *ForecastScheduler) Start(ctx context.Context, serverOnly bool) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	config := s.GetConfig()

	if config.DryRun {
		s.logger.Warn("DRY-RUN MODE ENABLED: scores will not be persisted")
	}

	if config.PostgresConnString != "" && s.getStore() == nil {
		if err := s.openStore(ctx, config.PostgresConnString); err != nil {
			s.logger.Errorw("persistence disabled", "error", err)
		}
	}

	// Start web server if configured
	var serverErr error
	if s.webServer != nil {
		serverErr = s.webServer.Start()
		if serverErr != nil {
			s.logger.Errorw("failed to start web server", "error", serverErr)
		} else {
			s.logger.Infow("web server started", "port", s.webServer.port)
		}
	}
	if serverOnly {
		s.restoreFromStore(ctx)
		return serverErr
	}

	// First refresh runs right away, the following ones are aligned to the interval
	if err := s.RefreshForecast(ctx); err != nil {
		s.logger.Warnw("initial forecast refresh incomplete", "error", err)
	}

	tasks := []PeriodicTask{
		{
			name:         "ForecastRefresh",
			initialDelay: initialDelay(s.now(), config.RefreshInterval),
			interval:     config.RefreshInterval,
			runFunc: func() {
				if err := s.RefreshForecast(ctx); err != nil {
					s.logger.Warnw("forecast refresh incomplete", "error", err)
				}
			},
		},
	}

	// Start each periodic task in its own goroutine
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.run(ctx, s.stopChan, s.logger)
		}()
	}

	wg.Wait()

	s.logger.Info("all periodic tasks stopped")
	s.stop()
	return nil
}

// Stop gracefully stops the scheduler
func (s *ForecastScheduler) Stop() {
	s.stop()
}

func (s *ForecastScheduler) stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}

	s.isRunning = false

	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}

	store := s.store
	s.store = nil
	s.mu.Unlock()

	// Handlers read scheduler state, so the web server is shut down without holding mu
	if s.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.webServer.Stop(ctx); err != nil {
			s.logger.Errorw("error stopping web server", "error", err)
		}
	}

	if store != nil {
		if err := store.Close(); err != nil {
			s.logger.Errorw("error closing database", "error", err)
		}
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *ForecastScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *ForecastScheduler) getStore() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

func (s *ForecastScheduler) openStore(ctx context.Context, connString string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := OpenStore(ctx, connString, s.logger)
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return err
	}
	s.SetStore(store)
	s.logger.Infow("connected to database", "conn", logger.MaskConnString(connString))
	return nil
}

// restoreFromStore fills the cache from persisted scores so a server-only
// instance has something to serve
func (s *ForecastScheduler) restoreFromStore(ctx context.Context) {
	store := s.getStore()
	if store == nil {
		return
	}

	loc := s.GetConfig().TimeLocation()
	now := s.now()
	for _, source := range s.Sources() {
		records, err := store.LoadScores(ctx, source, now.Truncate(time.Hour))
		if err != nil {
			s.logger.Errorw("failed to restore scores", "source", source, "error", err)
			continue
		}
		if len(records) == 0 {
			continue
		}
		s.cache.Set(s.buildEntry(source, "", now, records, loc))
		s.logger.Infow("restored scores", "source", source, "count", len(records))
	}
}

// RefreshForecast fetches every source concurrently and replaces their cache
// entries. A failing source keeps its previous entry; the joined error lists
// every failure.
func (s *ForecastScheduler) RefreshForecast(ctx context.Context) error {
	start := s.now()
	runID := uuid.New()
	sources := s.Sources()

	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.refreshSource(ctx, runID, source)
		}()
	}
	wg.Wait()

	if s.metrics != nil {
		s.metrics.RefreshDuration.Observe(s.now().Sub(start).Seconds())
	}
	return errors.Join(errs...)
}

func (s *ForecastScheduler) refreshSource(ctx context.Context, runID uuid.UUID, source forecast.Source) error {
	config := s.GetConfig()
	log := s.logger.With("source", source, "run_id", runID)

	fetchCtx, cancel := context.WithTimeout(ctx, config.APITimeout)
	defer cancel()

	now := s.now()
	normalized, err := s.fetch(fetchCtx, source, now)
	if err != nil {
		s.recordError(source, err)
		log.Errorw("failed to fetch forecast", "error", err)
		return fmt.Errorf("%s: %w", source, err)
	}
	s.recordError(source, nil)

	records := scoring.ScoreAll(normalized)
	entry := s.buildEntry(source, runID.String(), now, records, config.TimeLocation())
	s.cache.Set(entry)

	if s.metrics != nil {
		s.metrics.LastRefresh.WithLabelValues(string(source)).SetToCurrentTime()
		s.metrics.RecordsScored.WithLabelValues(string(source)).Add(float64(len(records)))
		if entry.BestWindow.Found {
			s.metrics.BestWindowScore.WithLabelValues(string(source)).Set(float64(entry.BestWindow.AverageScore))
		}
	}

	log.Infow("forecast refreshed",
		"records", len(records),
		"best_window_found", entry.BestWindow.Found,
		"best_window_score", entry.BestWindow.AverageScore,
		"alerts", len(entry.Alerts),
	)

	if store := s.getStore(); store != nil && !config.DryRun {
		if err := store.SaveScores(ctx, runID, source, records); err != nil {
			log.Errorw("failed to persist scores", "error", err)
		}
	}

	s.webServer.BroadcastForecast(entry)
	return nil
}

// fetch returns the normalized forecast of one source
func (s *ForecastScheduler) fetch(ctx context.Context, source forecast.Source, now time.Time) ([]forecast.NormalizedConditionRecord, error) {
	config := s.GetConfig()

	switch source {
	case forecast.SourceOpenMeteo:
		resp, err := s.openMeteo.GetHourly(ctx, config.Latitude, config.Longitude)
		if err != nil {
			return nil, err
		}
		samples, err := resp.Samples()
		if err != nil {
			return nil, err
		}
		return forecast.Normalize(samples, forecast.SourceOpenMeteo, now), nil

	case forecast.SourceSevenTimer:
		resp, err := s.sevenTimer.GetAstro(ctx, config.Latitude, config.Longitude)
		if err != nil {
			return nil, err
		}
		return forecast.NormalizeAstro(resp.Samples(), now), nil

	case forecast.SourceMetNorway:
		altitude := int(config.Elevation)
		fc, err := s.metNorway.GetComplete(ctx, meteo.QueryParams{
			Location: meteo.Location{Latitude: config.Latitude, Longitude: config.Longitude, Altitude: &altitude},
		})
		if err != nil {
			return nil, err
		}
		// Only the hourly head scores; the 6-hourly tail would pair slots six hours apart
		steps := fc.Hourly(now.Add(-forecast.StaleTolerance), metNorwayHorizon)
		return forecast.Normalize(meteo.StepSamples(steps), forecast.SourceMetNorway, now), nil
	}

	return nil, fmt.Errorf("unknown source %q", source)
}

// metNorwayHorizon bounds the hourly part of the MET Norway timeseries
const metNorwayHorizon = 72 * time.Hour

func (s *ForecastScheduler) buildEntry(source forecast.Source, runID string, fetchedAt time.Time, records []scoring.ObservingScoreRecord, loc *time.Location) CachedForecast {
	scoring.AnnotateSky(records, celestial.NewAlmanac(s.Observer(), loc))
	return CachedForecast{
		Source:     source,
		RunID:      runID,
		FetchedAt:  fetchedAt,
		Records:    records,
		BestWindow: scoring.FindBestTwoHours(records, loc),
		Alerts:     s.GetConfig().AlertCriteria().MatchingSlots(records, loc),
	}
}

func (s *ForecastScheduler) recordError(source forecast.Source, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.lastErrors, source)
		return
	}
	s.lastErrors[source] = err.Error()
	if s.metrics != nil {
		s.metrics.RefreshErrors.WithLabelValues(string(source)).Inc()
	}
}

// GetForecast returns the cached forecast of source
func (s *ForecastScheduler) GetForecast(source forecast.Source) (CachedForecast, bool) {
	return s.cache.Get(source)
}

// GetBestWindow returns the best two-hour window of the cached forecast of source
func (s *ForecastScheduler) GetBestWindow(source forecast.Source) (scoring.BestWindow, bool) {
	entry, ok := s.cache.Get(source)
	if !ok {
		return scoring.BestWindow{}, false
	}
	return entry.BestWindow, true
}

// GetStatus returns the current status of the scheduler
func (s *ForecastScheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	status := SchedulerStatus{
		IsRunning:   s.isRunning,
		DryRun:      s.config.DryRun,
		Persistence: s.store != nil,
	}
	lastErrors := make(map[forecast.Source]string, len(s.lastErrors))
	for k, v := range s.lastErrors {
		lastErrors[k] = v
	}
	s.mu.RUnlock()

	if last, ok := s.cache.LastRefresh(); ok {
		status.LastRefresh = &last
	}

	for _, source := range s.Sources() {
		ss := SourceStatus{Source: source, LastError: lastErrors[source]}
		if entry, ok := s.cache.Get(source); ok {
			fetched := entry.FetchedAt
			ss.Cached = true
			ss.FetchedAt = &fetched
			ss.Records = len(entry.Records)
			ss.Alerts = len(entry.Alerts)
		}
		status.Sources = append(status.Sources, ss)
	}
	return status
}

// SchedulerStatus represents the current status of the scheduler
type SchedulerStatus struct {
	IsRunning   bool           `json:"is_running"`
	DryRun      bool           `json:"dry_run"`
	Persistence bool           `json:"persistence"`
	LastRefresh *time.Time     `json:"last_refresh,omitempty"`
	Sources     []SourceStatus `json:"sources"`
}

// SourceStatus describes the cache state of one provider
type SourceStatus struct {
	Source    forecast.Source `json:"source"`
	Cached    bool            `json:"cached"`
	FetchedAt *time.Time      `json:"fetched_at,omitempty"`
	Records   int             `json:"records"`
	Alerts    int             `json:"alerts"`
	LastError string          `json:"last_error,omitempty"`
}

// HasForecast reports whether at least one source has a live cache entry
func (st SchedulerStatus) HasForecast() bool {
	for _, s := range st.Sources {
		if s.Cached {
			return true
		}
	}
	return false
}
