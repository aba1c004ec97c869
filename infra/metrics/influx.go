package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/vpp/core/metrics"
	"github.com/kilianp07/vpp/infra/logger"
)

// InfluxSink writes negotiation outcomes to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func negotiationPoint(rec coremetrics.NegotiationRecord) *write.Point {
	p := write.NewPointWithMeasurement("negotiation_result").
		AddTag("opportunity_id", rec.OpportunityID).
		AddTag("service", string(rec.Service)).
		AddTag("success", strconv.FormatBool(rec.Success))
	if rec.FailureReason != "" {
		p = p.AddTag("failure_reason", rec.FailureReason)
	}
	return p.AddField("rounds", rec.Rounds).
		AddField("members", rec.Members).
		AddField("committed_mw", round3(rec.CommittedMW)).
		AddField("clearing_price", round3(rec.ClearingPrice)).
		AddField("mean_satisfaction", round3(rec.MeanSatisfaction)).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
}

// RecordNegotiation writes the cycle summary.
func (s *InfluxSink) RecordNegotiation(rec coremetrics.NegotiationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, negotiationPoint(rec))
}

// RecordRound writes the outcome of an offer round.
func (s *InfluxSink) RecordRound(rec coremetrics.RoundRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("negotiation_round").
		AddTag("opportunity_id", rec.OpportunityID).
		AddTag("round", strconv.Itoa(rec.Round)).
		AddField("offers", rec.Offers).
		AddField("accepted", rec.Accepted).
		AddField("countered", rec.Countered).
		AddField("rejected", rec.Rejected).
		AddField("committed_kw", round3(rec.CommittedKW)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOptimization writes the optimizer summary followed by one point per
// dispatched supplier.
func (s *InfluxSink) RecordOptimization(rec coremetrics.OptimizationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r := rec.Result
	p := write.NewPointWithMeasurement("optimization_result").
		AddTag("opportunity_id", rec.OpportunityID).
		AddTag("optimizer", rec.Optimizer).
		AddTag("status", string(r.Status)).
		AddTag("fallback", strconv.FormatBool(r.UsedFallback)).
		AddField("bid_price", round3(r.BidPrice)).
		AddField("total_bid_mw", round3(r.TotalBidMW)).
		AddField("expected_profit", round3(r.ExpectedProfit)).
		AddField("satisfaction", round3(r.Satisfaction)).
		AddField("violations", len(r.Violations)).
		SetTime(rec.Time)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, id := range sortedKeys(r.Dispatch) {
		dp := write.NewPointWithMeasurement("supplier_dispatch").
			AddTag("opportunity_id", rec.OpportunityID).
			AddTag("optimizer", rec.Optimizer).
			AddTag("supplier_id", id).
			AddField("dispatch_kw", round3(r.Dispatch[id])).
			AddField("payment", round3(r.Payments[id])).
			SetTime(rec.Time)
		if err := s.writeAPI.WritePoint(ctx, dp); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
