package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/status"
	"github.com/google/uuid"
)

// UpdateInterval is the nominal poll period.
const UpdateInterval = 500 * time.Millisecond

const maxStatusBody = 64 << 10

// Dashboard polls the board and fans each successful reading out to the
// energy integrator, the alert notifier, the chart and the display, in that
// order. A failed poll only marks the display offline.
type Dashboard struct {
	client   *http.Client
	base     *url.URL
	interval time.Duration
	session  uuid.UUID
	now      func() time.Time

	energy  *EnergyIntegrator
	alerts  *AlertNotifier
	chart   ChartSink
	display Display
}

type Option func(*Dashboard)

// WithInterval overrides the poll period.
func WithInterval(d time.Duration) Option {
	return func(db *Dashboard) {
		if d > 0 {
			db.interval = d
		}
	}
}

func WithClient(c *http.Client) Option {
	return func(db *Dashboard) {
		if c != nil {
			db.client = c
		}
	}
}

func WithNotifier(n Notifier, v Vibrator) Option {
	return func(db *Dashboard) {
		db.alerts = NewAlertNotifier(n, v)
	}
}

func WithChart(c ChartSink) Option {
	return func(db *Dashboard) {
		if c != nil {
			db.chart = c
		}
	}
}

func WithDisplay(d Display) Option {
	return func(db *Dashboard) {
		if d != nil {
			db.display = d
		}
	}
}

func WithSession(id uuid.UUID) Option {
	return func(db *Dashboard) {
		db.session = id
	}
}

func withClock(now func() time.Time) Option {
	return func(db *Dashboard) {
		db.now = now
	}
}

// New creates a dashboard polling the board at base.
func New(base *url.URL, opts ...Option) *Dashboard {
	db := &Dashboard{
		client:   http.DefaultClient,
		base:     base,
		interval: UpdateInterval,
		session:  uuid.New(),
		now:      time.Now,
		chart:    NewSeries(MaxChartPoints),
	}

	for _, opt := range opts {
		opt(db)
	}

	if db.alerts == nil {
		db.alerts = NewAlertNotifier(NewLogNotifier(db.session), nil)
	}
	if db.display == nil {
		db.display = NewConsoleDisplay(db.session)
	}
	db.energy = NewEnergyIntegrator(db.interval)

	return db
}

// Session identifies this dashboard instance in logs and notifications.
func (db *Dashboard) Session() uuid.UUID {
	return db.session
}

// Energy returns the accumulated energy estimate in mWh.
func (db *Dashboard) Energy() float64 {
	return db.energy.Cumulative()
}

// Run polls once immediately and then every interval until ctx is done.
// Ticks are handled one at a time, so a slow poll delays or drops the
// following ticks instead of overlapping them.
func (db *Dashboard) Run(ctx context.Context) error {
	logger.Info().
		Str("session", db.session.String()).
		Str("board", db.base.String()).
		Dur("interval", db.interval).
		Msg("Starting dashboard")

	ticker := time.NewTicker(db.interval)
	defer ticker.Stop()

	db.tickAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("Dashboard stopped")
			return nil
		case <-ticker.C:
			db.tickAndLog(ctx)
		}
	}
}

func (db *Dashboard) tickAndLog(ctx context.Context) {
	if err := db.Tick(ctx); err != nil && ctx.Err() == nil {
		logger.Debug().Err(err).Msg("Poll failed")
	}
}

// Tick performs a single poll.
func (db *Dashboard) Tick(ctx context.Context) error {
	st, err := db.fetchStatus(ctx)
	if err != nil {
		db.display.SetOnline(false)
		return err
	}

	power := st.Totals.TotalPower
	cumulative := db.energy.Observe(power, db.now())
	db.alerts.Observe(ctx, st.Alert)
	db.chart.Push(power, cumulative)

	db.display.SetOnline(true)
	db.display.Render(View{
		TotalPowerMW:   power,
		EnergyTodayKWh: st.Totals.EnergyTodayKWh,
		CumulativeMWh:  cumulative,
		FanA:           st.Loads.FanA,
		FanB:           st.Loads.FanB,
		FanControl:     st.Fan.State,
		Alert:          st.Alert,
	})

	return nil
}

// statusReply also carries the offline marker served from the local cache.
type statusReply struct {
	status.Status
	Offline bool `json:"offline"`
}

func (db *Dashboard) fetchStatus(ctx context.Context) (status.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, db.endpoint("/status"), http.NoBody)
	if err != nil {
		return status.Status{}, errors.New().Wrap(ErrRequestFailed, err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := db.client.Do(req)
	if err != nil {
		return status.Status{}, errors.New().Wrap(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return status.Status{}, errors.New().WithMessage(ErrBadStatus, fmt.Sprintf("status endpoint returned %d", resp.StatusCode))
	}

	var reply statusReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStatusBody)).Decode(&reply); err != nil {
		return status.Status{}, errors.New().Wrap(ErrMalformedBody, err)
	}
	if reply.Offline {
		return status.Status{}, errors.New().New(ErrOffline)
	}

	return reply.Status, nil
}

func (db *Dashboard) endpoint(path string) string {
	return db.base.ResolveReference(&url.URL{Path: path}).String()
}
