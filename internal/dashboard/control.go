package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
)

const (
	toastOK     = "OK"
	toastError  = "Error"
	toastFailed = "Failed to send command"

	replyStatusOK = "OK"
)

type controlReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SendControl posts cmd to the board and toasts the outcome. Only a reply
// whose status is "OK" is a success, whatever the HTTP status code. The
// returned error is for logging only; the toast has already been shown.
func (db *Dashboard) SendControl(ctx context.Context, cmd any) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		db.display.Toast(toastFailed)
		return errors.New().Wrap(ErrControlFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, db.endpoint("/control"), bytes.NewReader(body))
	if err != nil {
		db.display.Toast(toastFailed)
		return errors.New().Wrap(ErrControlFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := db.client.Do(req)
	if err != nil {
		db.display.Toast(toastFailed)
		return errors.New().Wrap(ErrControlFailed, err)
	}
	defer resp.Body.Close()

	// An unreadable reply counts as an empty one, which is not a success.
	var reply controlReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		logger.Debug().Err(err).Msg("Control reply not decodable")
		reply = controlReply{}
	}

	ok := reply.Status == replyStatusOK
	msg := reply.Message
	if msg == "" {
		msg = toastError
		if ok {
			msg = toastOK
		}
	}
	db.display.Toast(msg)

	logger.Debug().Int("status", resp.StatusCode).Str("reply_status", reply.Status).Str("message", reply.Message).Msg("Control command sent")

	if !ok {
		return errors.New().WithMessage(ErrControlFailed, msg)
	}
	return nil
}
