package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status_code"},
	)
)

var (
	TradesProposedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trades_proposed_total",
			Help: "Total number of created trade requests",
		},
	)

	TradeTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_transitions_total",
			Help: "Trade status transitions",
		},
		[]string{"from", "to"},
	)

	TradeConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_confirmations_total",
			Help: "Confirm calls by outcome",
		},
		[]string{"outcome"},
	)

	TradeConfirmConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trade_confirm_conflicts_total",
			Help: "Confirmation writes that lost a race and were replayed",
		},
	)

	MessagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total number of stored negotiation messages",
		},
	)

	ChannelSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_channel_subscribers",
			Help: "Active live subscriptions to negotiation channels",
		},
	)

	ChannelDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_channel_dropped_total",
			Help: "Live deliveries dropped because a subscriber was too slow",
		},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Connected websocket clients",
		},
	)
)

const (
	ConfirmOutcomeFlagSet    = "flag_set"
	ConfirmOutcomeFinalized  = "finalized"
	ConfirmOutcomeIdempotent = "idempotent"
	ConfirmOutcomeFailed     = "failed"
)

func RecordTransition(from, to string) {
	TradeTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordConfirmation(outcome string) {
	TradeConfirmationsTotal.WithLabelValues(outcome).Inc()
}
