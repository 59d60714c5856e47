package dashboard

import (
	"context"
	"sync"

	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/status"
	"github.com/google/uuid"
)

// View is everything the display renders after a successful poll.
type View struct {
	TotalPowerMW   float64
	EnergyTodayKWh float64
	CumulativeMWh  float64
	FanA           status.Load
	FanB           status.Load
	FanControl     status.State
	Alert          status.Alert
}

// Display is the user-facing sink.
type Display interface {
	SetOnline(online bool)
	Render(v View)
	Toast(msg string)
}

// ConsoleDisplay renders to the log. Connection changes are logged once per
// transition rather than on every tick.
type ConsoleDisplay struct {
	mu      sync.Mutex
	online  bool
	known   bool
	session uuid.UUID
}

func NewConsoleDisplay(session uuid.UUID) *ConsoleDisplay {
	return &ConsoleDisplay{session: session}
}

func (d *ConsoleDisplay) SetOnline(online bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.known && d.online == online {
		return
	}
	d.online, d.known = online, true

	if online {
		logger.Info().Str("session", d.session.String()).Msg("Board online")
	} else {
		logger.Warn().Str("session", d.session.String()).Msg("Board offline")
	}
}

// Online reports the last connection state shown.
func (d *ConsoleDisplay) Online() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online
}

func (d *ConsoleDisplay) Render(v View) {
	event := logger.Info().
		Str("total_power", formatMW(v.TotalPowerMW)).
		Str("energy_today_kwh", formatFixed(v.EnergyTodayKWh, 3)).
		Str("energy_mwh", formatFixed(v.CumulativeMWh, 3)).
		Str("fan_a", formatMW(v.FanA.Power)+" "+stateOrOff(v.FanA.State)).
		Str("fan_b", formatMW(v.FanB.Power)+" "+stateOrOff(v.FanB.State)).
		Str("fan_control", stateOrOff(v.FanControl))

	if v.Alert.Active {
		msg := v.Alert.Message
		if msg == "" {
			msg = defaultAlertMessage
		}
		event = event.Str("alert", msg)
	}

	event.Msg("Status")
}

func (d *ConsoleDisplay) Toast(msg string) {
	logger.Info().Str("session", d.session.String()).Msg(msg)
}

// LogNotifier delivers notifications to the log. It is always permitted.
type LogNotifier struct {
	session uuid.UUID
}

func NewLogNotifier(session uuid.UUID) *LogNotifier {
	return &LogNotifier{session: session}
}

func (*LogNotifier) Permission() Permission {
	return PermissionGranted
}

func (*LogNotifier) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (n *LogNotifier) Notify(_ context.Context, title, body, _ string) error {
	logger.Warn().Str("session", n.session.String()).Str("title", title).Msg(body)
	return nil
}
