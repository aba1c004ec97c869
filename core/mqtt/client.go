// Package mqtt defines the wire contract between the negotiation coordinator
// and suppliers reachable over an MQTT broker.
//
// The coordinator publishes requests on
//
//	<prefix>/supplier/<supplier-id>/request
//
// and suppliers publish the matching reply on the ReplyTo topic carried by the
// request, correlated by RequestID.
package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/vpp/core/model"
)

// Kind identifies the request carried by an Envelope.
type Kind string

const (
	KindQuery Kind = "capacity_query"
	KindOffer Kind = "counter_offer"
)

// Envelope is the JSON message exchanged in both directions.
type Envelope struct {
	RequestID   string                  `json:"request_id"`
	Kind        Kind                    `json:"kind"`
	SupplierID  string                  `json:"supplier_id"`
	ReplyTo     string                  `json:"reply_to,omitempty"`
	Opportunity *model.Opportunity      `json:"opportunity,omitempty"`
	Offer       *model.CounterOffer     `json:"offer,omitempty"`
	Bid         *model.SupplierBid      `json:"bid,omitempty"`
	Response    *model.SupplierResponse `json:"response,omitempty"`
	Error       string                  `json:"error,omitempty"`
	SentAt      time.Time               `json:"sent_at"`
}

// Err returns the remote error carried by a reply, if any.
func (e Envelope) Err() error {
	if e.Error == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRemote, e.Error)
}

// Requester sends a request envelope to a supplier and waits for its reply.
type Requester interface {
	Request(ctx context.Context, req Envelope) (Envelope, error)
}

// RequestTopic returns the topic a supplier listens on.
func RequestTopic(prefix, supplierID string) string {
	return fmt.Sprintf("%s/supplier/%s/request", prefix, supplierID)
}

// RequestWildcard matches the request topics of every supplier.
func RequestWildcard(prefix string) string {
	return prefix + "/supplier/+/request"
}

// ReplyTopic returns the topic a coordinator receives replies on.
func ReplyTopic(prefix, clientID string) string {
	return fmt.Sprintf("%s/coordinator/%s/reply", prefix, clientID)
}
