// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	metrics "github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all marketplace metrics using luxfi/metric
type Metrics struct {
	metricsInstance metrics.Metrics

	// Slot registry metrics
	SlotsCreated   metrics.Counter
	SlotsPurchased metrics.Counter
	BidsPlaced     metrics.Counter
	AuctionsClosed metrics.Counter
	AdsCreated     metrics.Counter

	// Escrow metrics
	EscrowsFunded   metrics.Counter
	EscrowsReleased metrics.Counter
	EscrowsRefunded metrics.Counter

	// Performance metrics
	BidLatency    metrics.Histogram
	SettleLatency metrics.Histogram
}

// NewMetrics creates a new metrics instance using luxfi/metric
func NewMetrics() (*Metrics, error) {
	factory := metrics.NewPrometheusFactory()
	metricsInstance := factory.New("admarket")

	m := &Metrics{
		metricsInstance: metricsInstance,
	}

	m.SlotsCreated = metricsInstance.NewCounter("slots_created_total", "Total number of ad slots listed")
	m.SlotsPurchased = metricsInstance.NewCounter("slots_purchased_total", "Total number of fixed-price purchases")
	m.BidsPlaced = metricsInstance.NewCounter("bids_placed_total", "Total number of accepted bids")
	m.AuctionsClosed = metricsInstance.NewCounter("auctions_closed_total", "Total number of auctions finalized")
	m.AdsCreated = metricsInstance.NewCounter("ads_created_total", "Total number of creatives registered")

	m.EscrowsFunded = metricsInstance.NewCounter("escrows_funded_total", "Total number of escrows funded")
	m.EscrowsReleased = metricsInstance.NewCounter("escrows_released_total", "Total number of escrows released to publishers")
	m.EscrowsRefunded = metricsInstance.NewCounter("escrows_refunded_total", "Total number of escrows refunded to advertisers")

	m.BidLatency = metricsInstance.NewHistogram(
		"bid_latency_seconds",
		"Time to process a bid",
		prometheus.DefBuckets,
	)

	m.SettleLatency = metricsInstance.NewHistogram(
		"settle_latency_seconds",
		"Time to settle an escrow",
		prometheus.DefBuckets,
	)

	return m, nil
}

// GetGatherer returns the prometheus gatherer for metrics export
func (m *Metrics) GetGatherer() prometheus.Gatherer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultGatherer
}

// GetRegisterer returns the prometheus registerer
func (m *Metrics) GetRegisterer() prometheus.Registerer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultRegisterer
}
