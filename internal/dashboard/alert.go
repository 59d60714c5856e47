package dashboard

import (
	"context"
	"time"

	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/status"
)

const (
	alertTitle          = "Energy Alert"
	defaultAlertMessage = "Alert"
	alertIcon           = "icons/icon-192.png"
)

// alertVibration is buzz, pause, buzz.
var alertVibration = []time.Duration{100 * time.Millisecond, 60 * time.Millisecond, 100 * time.Millisecond}

// Permission mirrors the platform notification permission states.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

// Notifier is the platform notification capability.
type Notifier interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, title, body, icon string) error
}

// Vibrator is the platform haptic capability.
type Vibrator interface {
	Vibrate(pattern []time.Duration) error
}

// AlertNotifier fires once per alert activation: the transition from
// inactive to active notifies, staying active or clearing does not. A nil
// Notifier or Vibrator means the capability is missing and is skipped.
// Without a granted notification permission nothing is delivered, not even
// the vibration.
type AlertNotifier struct {
	notifier Notifier
	vibrator Vibrator
	armed    bool
}

func NewAlertNotifier(notifier Notifier, vibrator Vibrator) *AlertNotifier {
	return &AlertNotifier{notifier: notifier, vibrator: vibrator}
}

// Observe feeds one alert observation and reports whether it fired.
func (a *AlertNotifier) Observe(ctx context.Context, alert status.Alert) bool {
	wasArmed := a.armed
	a.armed = alert.Active

	if !alert.Active || wasArmed {
		return false
	}

	msg := alert.Message
	if msg == "" {
		msg = defaultAlertMessage
	}

	if a.notify(ctx, msg) {
		a.vibrate()
	}

	return true
}

// Armed reports whether the last observed alert was active.
func (a *AlertNotifier) Armed() bool {
	return a.armed
}

// notify reports whether notification permission was granted. Vibration
// only follows a granted permission.
func (a *AlertNotifier) notify(ctx context.Context, msg string) bool {
	if a.notifier == nil {
		return false
	}

	perm := a.notifier.Permission()
	if perm == PermissionDefault {
		var err error
		if perm, err = a.notifier.RequestPermission(ctx); err != nil {
			logger.Debug().Err(err).Msg("Notification permission request failed")
			return false
		}
	}
	if perm != PermissionGranted {
		return false
	}

	if err := a.notifier.Notify(ctx, alertTitle, msg, alertIcon); err != nil {
		logger.Debug().Err(err).Msg("Notification failed")
	}
	return true
}

func (a *AlertNotifier) vibrate() {
	if a.vibrator == nil {
		return
	}
	if err := a.vibrator.Vibrate(alertVibration); err != nil {
		logger.Debug().Err(err).Msg("Vibration failed")
	}
}
