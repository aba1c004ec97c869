package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	require.NoError(t, os.WriteFile(certFile, certPEM, 0644))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0644))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0644))
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	_, err := Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", AuthMethod: "certificate"})
	require.NoError(t, err)
	assert.Empty(t, opts.Username)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{Broker: "tcp://b:1883", AuthMethod: "kerberos"}.Validate())
	assert.NoError(t, Config{Broker: "tcp://b:1883", AuthMethod: "both"}.Validate())

	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "vpp", cfg.TopicPrefix)
	assert.Equal(t, 5000, cfg.RequestTimeoutMS)
	assert.NotEmpty(t, cfg.ClientID)
}

func TestLWTConfigured(t *testing.T) {
	b := newMockBroker()
	withBroker(t, b)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1})
	require.NoError(t, err)
	opts := b.clients[0].opts
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "lwt", opts.WillTopic)
	assert.Equal(t, "bye", string(opts.WillPayload))
	cli.Disconnect()
	assert.Empty(t, b.published())
}

// mockBroker routes published messages to the subscriptions of every mock
// client created while it is installed.
type mockBroker struct {
	mu      sync.Mutex
	clients []*mockClient
	subs    []subscription
	pubs    []publication
}

type subscription struct {
	filter  string
	qos     byte
	owner   *mockClient
	handler paho.MessageHandler
}

type publication struct {
	topic string
	qos   byte
}

func newMockBroker() *mockBroker { return &mockBroker{} }

func withBroker(t *testing.T, b *mockBroker) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient {
		mc := &mockClient{opts: o, broker: b}
		b.mu.Lock()
		b.clients = append(b.clients, mc)
		b.mu.Unlock()
		return mc
	}
	t.Cleanup(func() { newMQTTClient = prev })
}

func (b *mockBroker) published() []publication {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publication(nil), b.pubs...)
}

func (b *mockBroker) subscriptions() []subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]subscription(nil), b.subs...)
}

func (b *mockBroker) deliver(topic string, payload []byte) {
	var targets []subscription
	b.mu.Lock()
	for _, s := range b.subs {
		if topicMatches(s.filter, topic) {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()
	for _, s := range targets {
		s.handler(s.owner, mockMessage{topic: topic, p: payload})
	}
}

func topicMatches(filter, topic string) bool {
	f := strings.Split(filter, "/")
	t := strings.Split(topic, "/")
	for i, part := range f {
		if part == "#" {
			return true
		}
		if i >= len(t) || (part != "+" && part != t[i]) {
			return false
		}
	}
	return len(f) == len(t)
}

// mockClient implements pahoClient for tests
type mockClient struct {
	paho.Client
	opts        *paho.ClientOptions
	broker      *mockBroker
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	b := m.broker
	b.mu.Lock()
	b.pubs = append(b.pubs, publication{topic, qos})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		b.mu.Unlock()
		if err != nil {
			return &dummyToken{err: err}
		}
	} else {
		b.mu.Unlock()
	}
	data, _ := payload.([]byte)
	b.deliver(topic, data)
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, h paho.MessageHandler) paho.Token {
	m.broker.mu.Lock()
	m.broker.subs = append(m.broker.subs, subscription{filter: topic, qos: qos, owner: m, handler: h})
	m.broker.mu.Unlock()
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct {
	topic string
	p     []byte
}

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return m.topic }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
