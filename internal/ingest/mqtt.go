package ingest

import (
	"bytes"
	"context"
	"time"

	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/metrics"
	"codeberg.org/mutker/energymon/internal/telemetry"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // ms
	subscribeQoS      = 0
)

// MQTT subscribes to a broker topic on which the sensor node publishes the
// same JSON body it would POST to /api/energy.
type MQTT struct {
	service *Service
	topic   string
	client  mqtt.Client
}

func NewMQTT(cfg config.MQTT, service *Service) *MQTT {
	b := &MQTT{service: service, topic: cfg.Topic}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(b.subscribe).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn().Err(err).Msg("MQTT connection lost")
		})

	b.client = mqtt.NewClient(opts)

	return b
}

// Start connects to the broker and disconnects again when ctx is done.
// Subscriptions are (re)established on every successful connect.
func (b *MQTT) Start(ctx context.Context) error {
	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.New().New(ErrBrokerConnect).WithMessage("timed out connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return errors.New().Wrap(ErrBrokerConnect, err)
	}

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	return nil
}

func (b *MQTT) Stop() {
	if b.client.IsConnected() {
		b.client.Disconnect(disconnectQuiesce)
		logger.Info().Msg("MQTT bridge disconnected")
	}
}

func (b *MQTT) subscribe(c mqtt.Client) {
	token := c.Subscribe(b.topic, subscribeQoS, b.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(ErrSubscribe, err)).Str("topic", b.topic).Msg("MQTT subscribe failed")
		return
	}
	logger.Info().Str("topic", b.topic).Msg("MQTT bridge subscribed")
}

func (b *MQTT) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	b.service.Accept(metrics.SourceMQTT, telemetry.DecodeSample(bytes.NewReader(msg.Payload())))
}
