// Package publish announces prayer transitions on an MQTT broker so display
// screens can follow the schedule without polling the daemon.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/internal/prayer"
	"github.com/namaadhu/namaadhu/internal/scheduler"
	"github.com/namaadhu/namaadhu/pkg/logger"
)

const (
	// ScheduleTopic is appended to the configured prefix.
	ScheduleTopic = "schedule"

	qosAtLeastOnce     = 1
	defaultTimeout     = 10 * time.Second
	disconnectQuiesce  = 250
	clientIDNamePrefix = "namaadhu-"
)

var ErrTimeout = errors.New("mqtt operation timed out")

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// NewClient creates a paho client for broker with a unique client id. The
// client reconnects on its own after connection loss.
func NewClient(broker string, l logger.Logger) mqtt.Client {
	if l == nil {
		l = logger.NewNopLogger()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientIDNamePrefix + uuid.NewString())
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultTimeout)
	opts.OnConnect = func(mqtt.Client) {
		l.Info("mqtt: connected to %s", broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		l.Warning("mqtt: connection lost: %v", err)
	}
	return mqtt.NewClient(opts)
}

// Describer renders a snapshot for publication.
type Describer func(scheduler.Snapshot) common.ScheduleInfo

// Publisher publishes the schedule whenever the current or upcoming prayer
// changes. Countdown ticks are not published.
type Publisher struct {
	client  Client
	topic   string
	log     logger.Logger
	timeout time.Duration

	last    transition
	started bool
}

// transition is what must change for a snapshot to be published.
type transition struct {
	loaded     bool
	day        time.Time
	current    prayer.Kind
	upcoming   prayer.Kind
	upcomingAt time.Time
}

func transitionOf(s scheduler.Snapshot) transition {
	return transition{
		loaded:     s.Loaded,
		day:        s.Day,
		current:    s.Current,
		upcoming:   s.Upcoming,
		upcomingAt: s.UpcomingAt,
	}
}

func (t transition) equal(o transition) bool {
	return t.loaded == o.loaded && t.day.Equal(o.day) &&
		t.current == o.current && t.upcoming == o.upcoming &&
		t.upcomingAt.Equal(o.upcomingAt)
}

// New creates a Publisher sending to prefix/schedule.
func New(client Client, prefix string, l logger.Logger) *Publisher {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Publisher{
		client:  client,
		topic:   prefix + "/" + ScheduleTopic,
		log:     l,
		timeout: defaultTimeout,
	}
}

// Topic returns the topic schedules are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// Connect connects the client to the broker.
func (p *Publisher) Connect() error {
	if err := p.wait(p.client.Connect()); err != nil {
		return fmt.Errorf("error: failed to connect to MQTT broker: %w", err)
	}
	return nil
}

// Publish sends info as a retained JSON message.
func (p *Publisher) Publish(info common.ScheduleInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	if err := p.wait(p.client.Publish(p.topic, qosAtLeastOnce, true, payload)); err != nil {
		return fmt.Errorf("error: failed to publish to %s: %w", p.topic, err)
	}
	return nil
}

// Observe publishes snap if it is a transition from the last published one.
// It reports whether a message was sent.
func (p *Publisher) Observe(snap scheduler.Snapshot, describe Describer) (bool, error) {
	tr := transitionOf(snap)
	if p.started && tr.equal(p.last) {
		return false, nil
	}
	if err := p.Publish(describe(snap)); err != nil {
		return false, err
	}
	p.last = tr
	p.started = true
	return true, nil
}

// Run observes snaps until ctx is done or snaps is closed, then disconnects.
func (p *Publisher) Run(ctx context.Context, snaps <-chan scheduler.Snapshot, describe Describer) {
	defer p.client.Disconnect(disconnectQuiesce)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			sent, err := p.Observe(snap, describe)
			if err != nil {
				p.log.Error("mqtt: %v", err)
				continue
			}
			if sent {
				p.log.Info("mqtt: published %s -> %s", snap.Current, snap.Upcoming)
			}
		}
	}
}

func (p *Publisher) wait(tok mqtt.Token) error {
	if !tok.WaitTimeout(p.timeout) {
		return ErrTimeout
	}
	return tok.Error()
}
