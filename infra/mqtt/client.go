package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremqtt "github.com/kilianp07/vpp/core/mqtt"
	"github.com/kilianp07/vpp/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker           string          `json:"broker"`
	ClientID         string          `json:"client_id"`
	Username         string          `json:"username"`
	Password         string          `json:"password"`
	TopicPrefix      string          `json:"topic_prefix"`
	UseTLS           bool            `json:"use_tls"`
	ClientCert       string          `json:"client_cert"`
	ClientKey        string          `json:"client_key"`
	CABundle         string          `json:"ca_bundle"`
	AuthMethod       string          `json:"auth_method"`
	QoS              map[string]byte `json:"qos"`
	LWTTopic         string          `json:"lwt_topic"`
	LWTPayload       string          `json:"lwt_payload"`
	LWTQoS           byte            `json:"lwt_qos"`
	LWTRetain        bool            `json:"lwt_retain"`
	MaxRetries       int             `json:"max_retries"`
	BackoffMS        int             `json:"backoff_ms"`
	RequestTimeoutMS int             `json:"request_timeout_ms"`
	TLSConfig        *tls.Config     `json:"-"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "vpp-" + uuid.NewString()[:8]
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "vpp"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
	if c.RequestTimeoutMS <= 0 {
		c.RequestTimeoutMS = 5000
	}
}

// Validate checks the connection settings.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("unknown auth_method %q", c.AuthMethod)
	}
	return nil
}

// pahoClient is the subset of paho.Client used here.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient carries supplier requests and replies over an MQTT broker using
// Eclipse Paho. It implements coremqtt.Requester.
type PahoClient struct {
	cli        pahoClient
	prefix     string
	replyTopic string
	qos        map[string]byte

	mu         sync.Mutex
	pending    map[string]chan coremqtt.Envelope
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the client's
// reply topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     cfg.TopicPrefix,
		replyTopic: coremqtt.ReplyTopic(cfg.TopicPrefix, cfg.ClientID),
		qos:        cfg.QoS,
		pending:    make(map[string]chan coremqtt.Envelope),
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		timeout:    time.Duration(cfg.RequestTimeoutMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(pc.replyTopic, pc.qosFor("reply"), pc.onReply); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 1
}

// Prefix returns the topic prefix shared with the suppliers.
func (p *PahoClient) Prefix() string { return p.prefix }

func (p *PahoClient) onReply(_ paho.Client, msg paho.Message) {
	var env coremqtt.Envelope
	if err := json.Unmarshal(msg.Payload(), &env); err != nil {
		p.logger.Errorf("failed to decode reply: %v", err)
		return
	}
	p.mu.Lock()
	ch, ok := p.pending[env.RequestID]
	p.mu.Unlock()
	if !ok {
		p.logger.Warnf("reply %s matches no pending request", env.RequestID)
		return
	}
	select {
	case ch <- env:
	default:
	}
}

// publish sends payload, retrying with exponential backoff.
func (p *PahoClient) publish(topic string, qos byte, payload []byte) error {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			return nil
		}
		p.logger.Errorf("publish to %s attempt %d failed: %v", topic, attempt+1, err)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return err
}

// Request publishes req to the supplier's request topic and waits for the
// correlated reply, the request timeout or ctx.
func (p *PahoClient) Request(ctx context.Context, req coremqtt.Envelope) (coremqtt.Envelope, error) {
	req.RequestID = uuid.NewString()
	req.ReplyTo = p.replyTopic
	req.SentAt = time.Now()
	payload, err := json.Marshal(req)
	if err != nil {
		return coremqtt.Envelope{}, err
	}

	ch := make(chan coremqtt.Envelope, 1)
	p.mu.Lock()
	p.pending[req.RequestID] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, req.RequestID)
		p.mu.Unlock()
	}()

	topic := coremqtt.RequestTopic(p.prefix, req.SupplierID)
	if err := p.publish(topic, p.qosFor("request"), payload); err != nil {
		return coremqtt.Envelope{}, fmt.Errorf("publish %s: %w", req.Kind, err)
	}
	p.logger.Debugf("sent %s %s to %s", req.Kind, req.RequestID, topic)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case env := <-ch:
		return env, nil
	case <-ctx.Done():
		return coremqtt.Envelope{}, ctx.Err()
	case <-timer.C:
		return coremqtt.Envelope{}, fmt.Errorf("%s to %s: %w", req.Kind, req.SupplierID, coremqtt.ErrReplyTimeout)
	}
}

// Reply publishes a reply envelope on its ReplyTo topic.
func (p *PahoClient) Reply(replyTo string, env coremqtt.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.publish(replyTo, p.qosFor("reply"), payload)
}

// Subscribe registers handler for topic.
func (p *PahoClient) Subscribe(topic string, handler paho.MessageHandler) error {
	token := p.cli.Subscribe(topic, p.qosFor("request"), handler)
	token.Wait()
	return token.Error()
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
