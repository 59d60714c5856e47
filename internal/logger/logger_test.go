package logger_test

import (
	"bytes"
	"fmt"
	"testing"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, false, false, true)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestVerboseEnablesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, false, true, true)

	logger.Info().Float64("power_a_mw", 700).Msg("Received")
	logger.Debug().Msg("noise")

	assert.Contains(t, buf.String(), "Received")
	assert.Contains(t, buf.String(), "power_a_mw=700")
	assert.NotContains(t, buf.String(), "noise")
}

func TestErrorWithCode(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, true, false, true)

	err := errors.New().Wrap(errors.ErrListen, fmt.Errorf("address in use"))
	logger.ErrorWithCode(err).Msg("server failed")

	assert.Contains(t, buf.String(), "error_code=listen_failed")
	assert.Contains(t, buf.String(), "address in use")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, true, false, true)

	_, err := logger.Writer(logger.DebugLevel).Write([]byte("GET /status 200\n"))

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "GET /status 200")
}
