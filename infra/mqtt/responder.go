package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/kilianp07/vpp/core/mqtt"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/infra/logger"
)

// Responder serves capacity queries and counter-offers for a set of local
// suppliers on the broker.
type Responder struct {
	client    *PahoClient
	suppliers map[string]supplier.Supplier
	logger    logger.Logger
}

// NewResponder returns a Responder answering for suppliers through client.
func NewResponder(client *PahoClient, suppliers []supplier.Supplier) *Responder {
	return &Responder{client: client, suppliers: supplier.Index(suppliers), logger: logger.New("mqtt_responder")}
}

// Start subscribes to the request topics of every supplier. Requests are
// handled until ctx is done.
func (r *Responder) Start(ctx context.Context) error {
	topic := coremqtt.RequestWildcard(r.client.Prefix())
	err := r.client.Subscribe(topic, func(_ paho.Client, msg paho.Message) {
		go r.handle(ctx, msg.Topic(), msg.Payload())
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	r.logger.Infof("serving %d suppliers on %s", len(r.suppliers), topic)
	return nil
}

func (r *Responder) handle(ctx context.Context, topic string, payload []byte) {
	if ctx.Err() != nil {
		return
	}
	var req coremqtt.Envelope
	if err := json.Unmarshal(payload, &req); err != nil {
		r.logger.Errorf("invalid request on %s: %v", topic, err)
		return
	}
	if req.ReplyTo == "" {
		r.logger.Warnf("request %s has no reply topic", req.RequestID)
		return
	}
	if req.SupplierID == "" {
		req.SupplierID = supplierFromTopic(topic)
	}
	reply := r.Serve(ctx, req)
	if err := r.client.Reply(req.ReplyTo, reply); err != nil {
		r.logger.Errorf("reply %s: %v", req.RequestID, err)
	}
}

// Serve answers req with the addressed local supplier.
func (r *Responder) Serve(ctx context.Context, req coremqtt.Envelope) coremqtt.Envelope {
	reply := coremqtt.Envelope{RequestID: req.RequestID, Kind: req.Kind, SupplierID: req.SupplierID, SentAt: time.Now()}
	s, ok := r.suppliers[req.SupplierID]
	if !ok {
		reply.Error = fmt.Sprintf("unknown supplier %q", req.SupplierID)
		return reply
	}
	switch req.Kind {
	case coremqtt.KindQuery:
		if req.Opportunity == nil {
			reply.Error = "capacity query without opportunity"
			return reply
		}
		bid, err := s.QueryCapacity(ctx, *req.Opportunity)
		if err != nil {
			reply.Error = err.Error()
			return reply
		}
		reply.Bid = &bid
	case coremqtt.KindOffer:
		if req.Offer == nil {
			reply.Error = "counter offer without offer"
			return reply
		}
		resp, err := s.Decide(ctx, *req.Offer)
		if err != nil {
			reply.Error = err.Error()
			return reply
		}
		reply.Response = &resp
	default:
		reply.Error = fmt.Sprintf("unknown request kind %q", req.Kind)
	}
	return reply
}

// supplierFromTopic extracts the supplier id from <prefix>/supplier/<id>/request.
func supplierFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-2]
}
