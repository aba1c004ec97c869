// Package util holds helpers for tests that need real infrastructure.
package util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	brokerImage  = "eclipse-mosquitto:2.0"
	brokerPort   = "1883/tcp"
	readyTimeout = 5 * time.Second
	probeEvery   = 50 * time.Millisecond
)

// mosquitto.conf for an anonymous, non-persistent broker. Negotiation
// requests are QoS 1 so queued messages must survive a slow subscriber.
const brokerConf = `listener 1883
allow_anonymous true
persistence false
max_queued_messages 10000
log_dest stdout
log_type error
log_type warning
connection_messages true
`

// Broker is a disposable Mosquitto container.
type Broker struct {
	URL string

	container tc.Container
	dir       string
}

// Close stops the container and removes its config directory.
func (b *Broker) Close() {
	if b.container != nil {
		_ = b.container.Terminate(context.Background())
	}
	_ = os.RemoveAll(b.dir)
}

// StartBroker runs Mosquitto in Docker and blocks until an MQTT client can
// connect to it.
func StartBroker(ctx context.Context) (*Broker, error) {
	dir, err := os.MkdirTemp("", "vpp-broker")
	if err != nil {
		return nil, err
	}
	b := &Broker{dir: dir}
	conf := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(conf, []byte(brokerConf), 0o644); err != nil {
		b.Close()
		return nil, err
	}

	b.container, err = tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        brokerImage,
			ExposedPorts: []string{brokerPort},
			WaitingFor:   wait.ForListeningPort(brokerPort),
			Files: []tc.ContainerFile{{
				HostFilePath:      conf,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("start %s: %w", brokerImage, err)
	}

	host, err := b.container.Host(ctx)
	if err != nil {
		b.Close()
		return nil, err
	}
	port, err := b.container.MappedPort(ctx, brokerPort)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.URL = fmt.Sprintf("tcp://%s:%s", host, port.Port())

	readyCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := probe(readyCtx, b.URL); err != nil {
		b.Close()
		return nil, fmt.Errorf("broker %s not ready: %w", b.URL, err)
	}
	return b, nil
}

// BrokerFor starts a broker for the duration of t, skipping the test in short
// mode or when Docker is unavailable.
func BrokerFor(t testing.TB, ctx context.Context) *Broker {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping broker test in short mode")
	}
	b, err := StartBroker(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func probe(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("vpp-probe").
		SetConnectTimeout(time.Second)
	for {
		cli := paho.NewClient(opts)
		tok := cli.Connect()
		tok.Wait()
		if tok.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(probeEvery):
		}
	}
}
