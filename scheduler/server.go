package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/devskill-org/stargazing/catalog"
	"github.com/devskill-org/stargazing/celestial"
	"github.com/devskill-org/stargazing/forecast"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// WebServer provides HTTP endpoints for health checking, forecasts, sky data and the web UI
type WebServer struct {
	scheduler *ForecastScheduler
	server    *http.Server
	port      int
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map // *wsClient -> struct{}
	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version,omitempty"`
	Scheduler SchedulerHealth `json:"scheduler"`
	System    SystemHealth    `json:"system"`
}

// SchedulerHealth represents scheduler-specific health information
type SchedulerHealth struct {
	IsRunning       bool       `json:"is_running"`
	HasForecast     bool       `json:"has_forecast"`
	LastRefresh     *time.Time `json:"last_refresh,omitempty"`
	RefreshInterval string     `json:"refresh_interval"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
}

// SystemHealth represents system-level health information
type SystemHealth struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines,omitempty"`
}

const (
	// wsSendBuffer is how many messages a client may lag behind before it is dropped
	wsSendBuffer = 32
	wsWriteWait  = 10 * time.Second
)

// wsClient is one WebSocket connection. Only its writePump writes to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
		done: make(chan struct{}),
	}
}

// close stops the writer and closes the connection; it is safe to call more than once
func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// queue hands a message to the writer without blocking. A client whose buffer
// is full is too slow to keep and gets closed.
func (c *wsClient) queue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	case <-c.done:
		return false
	default:
		c.close()
		return false
	}
}

// writePump writes queued messages until the client is closed
func (c *wsClient) writePump(log *zap.SugaredLogger) {
	defer c.close()
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debugw("websocket write error", "error", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// NewWebServer creates a new web server with API endpoints and static file serving
func NewWebServer(scheduler *ForecastScheduler, port int) *WebServer {
	if port <= 0 {
		return nil // Web server disabled
	}

	hs := &WebServer{
		scheduler: scheduler,
		port:      port,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
	}
	hs.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      hs.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return hs
}

func (hs *WebServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", hs.healthHandler)
	mux.HandleFunc("/api/ready", hs.readinessHandler)
	mux.HandleFunc("/api/status", hs.statusHandler)
	mux.HandleFunc("/api/forecast", hs.forecastHandler)
	mux.HandleFunc("/api/best-window", hs.bestWindowHandler)
	mux.HandleFunc("/api/planets", hs.planetsHandler)
	mux.HandleFunc("/api/dso", hs.dsoHandler)
	mux.HandleFunc("/api/stars", hs.starsHandler)
	mux.HandleFunc("/api/constellations", hs.constellationsHandler)
	mux.HandleFunc("/api/altitude", hs.altitudeHandler)
	mux.HandleFunc("/api/ws", hs.wsHandler)
	mux.Handle("/metrics", hs.scheduler.Metrics().Handler())

	// Serve static files from web folder
	mux.Handle("/", http.FileServer(http.Dir(hs.scheduler.GetConfig().WebDir)))

	return mux
}

// Start starts the web server
func (hs *WebServer) Start() error {
	if hs == nil {
		return nil // Web server disabled
	}

	go hs.handleBroadcasts()
	go hs.broadcastStatus()

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't crash the main application
			hs.scheduler.logger.Errorw("web server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the web server
func (hs *WebServer) Stop(ctx context.Context) error {
	if hs == nil {
		return nil // Web server disabled
	}

	hs.closeOnce.Do(func() { close(hs.done) })

	hs.clients.Range(func(key, value any) bool {
		if c, ok := key.(*wsClient); ok {
			c.close()
		}
		return true
	})

	return hs.server.Shutdown(ctx)
}

// BroadcastForecast pushes a refreshed forecast to every WebSocket client.
// The message is dropped when the broadcast queue is full.
func (hs *WebServer) BroadcastForecast(entry CachedForecast) {
	if hs == nil {
		return
	}

	message, err := json.Marshal(map[string]any{
		"type":     "forecast_update",
		"forecast": entry,
	})
	if err != nil {
		hs.scheduler.logger.Errorw("failed to marshal forecast update", "error", err)
		return
	}

	select {
	case hs.broadcast <- message:
	default:
		hs.scheduler.logger.Warnw("broadcast queue full, dropping forecast update", "source", entry.Source)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// sourceParam reads ?source=, defaulting to Open-Meteo
func sourceParam(r *http.Request) (forecast.Source, error) {
	v := r.URL.Query().Get("source")
	if v == "" {
		return forecast.SourceOpenMeteo, nil
	}
	source := forecast.Source(v)
	if !source.Valid() {
		return "", fmt.Errorf("unknown source %q", v)
	}
	return source, nil
}

// dateParam reads ?date=YYYY-MM-DD in loc, defaulting to today
func dateParam(r *http.Request, loc *time.Location, now time.Time) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return celestial.StartOfDay(now.In(loc)), nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
	}
	return d, nil
}

func (hs *WebServer) buildHealth() (HealthResponse, SchedulerStatus) {
	status := hs.scheduler.GetStatus()
	config := hs.scheduler.GetConfig()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Scheduler: SchedulerHealth{
			IsRunning:       status.IsRunning,
			HasForecast:     status.HasForecast(),
			LastRefresh:     status.LastRefresh,
			RefreshInterval: config.RefreshInterval.String(),
			Latitude:        config.Latitude,
			Longitude:       config.Longitude,
		},
		System: SystemHealth{
			Uptime:     formatUptime(time.Since(hs.startTime)),
			Goroutines: runtime.NumGoroutine(),
		},
	}
	if !status.IsRunning {
		health.Status = "unhealthy"
	}
	return health, status
}

// healthHandler handles the /api/health endpoint
func (hs *WebServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	health, status := hs.buildHealth()
	code := http.StatusOK
	if !status.IsRunning {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

// readinessHandler handles the /api/ready endpoint. Ready means a forecast can be served.
func (hs *WebServer) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	status := hs.scheduler.GetStatus()
	ready := status.IsRunning && status.HasForecast()

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"ready":     ready,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// statusHandler handles the /api/status endpoint (detailed status)
func (hs *WebServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scheduler_status": hs.scheduler.GetStatus(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

// forecastHandler handles /api/forecast?source=
func (hs *WebServer) forecastHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	source, err := sourceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, ok := hs.scheduler.GetForecast(source)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no forecast cached for %s", source))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// bestWindowHandler handles /api/best-window?source=
func (hs *WebServer) bestWindowHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	source, err := sourceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	best, ok := hs.scheduler.GetBestWindow(source)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no forecast cached for %s", source))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":      source,
		"best_window": best,
	})
}

// planetsHandler handles /api/planets?date=
func (hs *WebServer) planetsHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	loc := hs.scheduler.GetConfig().TimeLocation()
	date, err := dateParam(r, loc, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	obs := hs.scheduler.Observer()
	var night *celestial.Night
	if n, ok := celestial.AstronomicalNight(obs, date); ok {
		night = &n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":               date.Format("2006-01-02"),
		"sun":                celestial.Visibility(celestial.Sun(), obs, date),
		"moon":               celestial.Visibility(celestial.Moon(), obs, date),
		"moon_phase":         celestial.MoonPhaseAt(date.Add(12 * time.Hour)),
		"astronomical_night": night,
		"planets":            celestial.PlanetVisibility(obs, date),
	})
}

// dsoHandler handles /api/dso?difficulty=&season=&constellation=&min_altitude=
func (hs *WebServer) dsoHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	sky := hs.scheduler.Sky()
	if sky == nil || sky.Messier == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
		return
	}

	q := r.URL.Query()
	filter := catalog.Filter{
		Difficulty:    catalog.Difficulty(q.Get("difficulty")),
		Constellation: q.Get("constellation"),
	}
	if v := q.Get("season"); v != "" {
		filter.Season = catalog.NormalizeSeason(v)
	}
	if v := q.Get("min_altitude"); v != "" {
		alt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid min_altitude %q", v))
			return
		}
		filter.MinAltitude = &alt
	}

	at := time.Now()
	if v := q.Get("time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid time %q, expected RFC3339", v))
			return
		}
		at = t
	}

	targets := sky.Messier.Visible(hs.scheduler.Observer(), at, filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"time":    at.UTC().Format(time.RFC3339),
		"count":   len(targets),
		"objects": targets,
	})
}

// floatParam reads an optional float query parameter. present is false when it is absent.
func floatParam(r *http.Request, name string) (v float64, present bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, true, nil
}

// viewParams reads ra, dec and radius in degrees. present reports whether any was given.
func viewParams(r *http.Request, defaultRadius float64) (center celestial.Equatorial, radius float64, present bool, err error) {
	ra, hasRA, err := floatParam(r, "ra")
	if err != nil {
		return center, 0, true, err
	}
	dec, hasDec, err := floatParam(r, "dec")
	if err != nil {
		return center, 0, true, err
	}
	radius, hasRadius, err := floatParam(r, "radius")
	if err != nil {
		return center, 0, true, err
	}
	if !hasRA && !hasDec && !hasRadius {
		return center, 0, false, nil
	}
	if !hasRA || !hasDec {
		return center, 0, true, fmt.Errorf("ra and dec are both required")
	}
	if !hasRadius {
		radius = defaultRadius
	}
	if ra < 0 || ra >= 360 || dec < -90 || dec > 90 || radius <= 0 || radius > 180 {
		return center, 0, true, fmt.Errorf("ra must be in [0, 360), dec in [-90, 90] and radius in (0, 180]")
	}
	return celestial.Equatorial{RA: ra, Dec: dec}, radius, true, nil
}

// defaultStarRadius is the field of view of /api/stars when radius is omitted
const defaultStarRadius = 15.0

// starsHandler handles /api/stars?ra=&dec=&radius=&density=
func (hs *WebServer) starsHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	sky := hs.scheduler.Sky()
	if sky == nil || sky.Stars == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
		return
	}

	center, radius, present, err := viewParams(r, defaultStarRadius)
	if err == nil && !present {
		err = fmt.Errorf("ra and dec are both required")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	density := catalog.Normal
	switch d := catalog.Density(r.URL.Query().Get("density")); d {
	case "":
	case catalog.Sparse, catalog.Normal, catalog.Dense:
		density = d
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown density %q", d))
		return
	}

	stars := sky.Stars.StarsNear(center, radius, density)
	writeJSON(w, http.StatusOK, map[string]any{
		"center":  center,
		"radius":  radius,
		"density": density,
		"count":   len(stars),
		"stars":   stars,
	})
}

// constellationsHandler handles /api/constellations with an optional ra=&dec=&radius= view
func (hs *WebServer) constellationsHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	sky := hs.scheduler.Sky()
	if sky == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
		return
	}

	center, radius, present, err := viewParams(r, defaultStarRadius)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	figures := sky.Constellations
	if present {
		figures = catalog.ConstellationsInView(figures, center, radius)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":          len(figures),
		"constellations": figures,
	})
}

// altitudeHandler handles /api/altitude?target=&date=. The curve spans the 24
// hours centred on local noon of date.
func (hs *WebServer) altitudeHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	name := r.URL.Query().Get("target")
	if name == "" {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}
	body, ok := hs.scheduler.Sky().Resolve(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown target %q", name))
		return
	}

	loc := hs.scheduler.GetConfig().TimeLocation()
	date, err := dateParam(r, loc, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	curve := celestial.AltitudeCurve(body, hs.scheduler.Observer(), date.Add(12*time.Hour), 0)
	resp := map[string]any{
		"target": body.Name(),
		"date":   date.Format("2006-01-02"),
		"points": curve,
	}
	if peak, ok := celestial.Culmination(curve); ok {
		resp["culmination"] = peak
	}
	writeJSON(w, http.StatusOK, resp)
}

func (hs *WebServer) clientCount() int {
	n := 0
	hs.clients.Range(func(key, value any) bool {
		n++
		return true
	})
	return n
}

// wsHandler handles WebSocket connections. The initial status and cached
// forecasts go through the client's queue so writePump stays the only writer.
func (hs *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	log := hs.scheduler.logger

	conn, err := hs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("websocket upgrade error", "error", err)
		return
	}

	client := newWSClient(conn)
	for _, message := range hs.initialMessages() {
		client.queue(message)
	}
	go client.writePump(log)

	hs.clients.Store(client, struct{}{})
	count := hs.clientCount()
	hs.scheduler.Metrics().WebSocketClients.Set(float64(count))
	log.Debugw("websocket client connected", "clients", count)

	defer func() {
		hs.clients.Delete(client)
		client.close()

		count := hs.clientCount()
		hs.scheduler.Metrics().WebSocketClients.Set(float64(count))
		log.Debugw("websocket client disconnected", "clients", count)
	}()

	// Read messages from client (ping/pong, close)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnw("websocket error", "error", err)
			}
			break
		}
	}
}

// handleBroadcasts fans messages out to the client queues
func (hs *WebServer) handleBroadcasts() {
	for {
		select {
		case message := <-hs.broadcast:
			hs.clients.Range(func(key, value any) bool {
				c, ok := key.(*wsClient)
				if !ok {
					return true
				}
				if !c.queue(message) {
					hs.scheduler.logger.Debugw("dropping slow websocket client")
					hs.clients.Delete(c)
				}
				return true
			})
		case <-hs.done:
			return
		}
	}
}

// broadcastStatus periodically broadcasts status updates
func (hs *WebServer) broadcastStatus() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if hs.clientCount() == 0 {
				continue
			}
			message, err := json.Marshal(hs.buildStatusData())
			if err != nil {
				hs.scheduler.logger.Errorw("failed to marshal status data", "error", err)
				continue
			}
			select {
			case hs.broadcast <- message:
			default:
			}
		case <-hs.done:
			return
		}
	}
}

// initialMessages is the status followed by every cached forecast, as sent to a new client
func (hs *WebServer) initialMessages() [][]byte {
	log := hs.scheduler.logger

	status, err := json.Marshal(hs.buildStatusData())
	if err != nil {
		log.Errorw("failed to marshal status data", "error", err)
		return nil
	}
	out := [][]byte{status}
	for _, source := range hs.scheduler.Sources() {
		entry, ok := hs.scheduler.GetForecast(source)
		if !ok {
			continue
		}
		message, err := json.Marshal(map[string]any{"type": "forecast_update", "forecast": entry})
		if err != nil {
			log.Errorw("failed to marshal cached forecast", "source", source, "error", err)
			continue
		}
		out = append(out, message)
	}
	return out
}

// buildStatusData builds combined health and status data
func (hs *WebServer) buildStatusData() map[string]any {
	health, status := hs.buildHealth()
	return map[string]any{
		"type":   "status_update",
		"health": health,
		"status": status,
	}
}

// formatUptime formats a duration as a string with seconds rounded to integer
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
