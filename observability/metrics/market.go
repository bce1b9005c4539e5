package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type MarketMetrics struct {
	bidsPlaced        prometheus.Counter
	bidsCancelled     prometheus.Counter
	auctionsCompleted prometheus.Counter
	buyNowCompleted   prometheus.Counter
	offersAccepted    prometheus.Counter
	cancellations     prometheus.Counter
	settlementVolume  *prometheus.CounterVec
	requestErrors     *prometheus.CounterVec
}

var (
	marketOnce     sync.Once
	marketRegistry *MarketMetrics
)

// Market returns the process-wide marketplace metrics, registering the
// collectors on first use.
func Market() *MarketMetrics {
	marketOnce.Do(func() {
		marketRegistry = &MarketMetrics{
			bidsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_bids_placed_total",
				Help: "Count of auction bids accepted into escrow.",
			}),
			bidsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_bids_cancelled_total",
				Help: "Count of open-auction bids withdrawn after the lock expired.",
			}),
			auctionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_auctions_completed_total",
				Help: "Count of auctions settled in favour of the top bid.",
			}),
			buyNowCompleted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_buynow_completed_total",
				Help: "Count of completed fixed-price sales.",
			}),
			offersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_offers_accepted_total",
				Help: "Count of accepted member offers.",
			}),
			cancellations: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_transactions_cancelled_total",
				Help: "Count of cancelled pending transactions.",
			}),
			settlementVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "market_settlement_volume_total",
				Help: "Settled currency volume by transaction path.",
			}, []string{"path"}),
			requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "market_rpc_errors_total",
				Help: "Count of failed marketplace RPC calls by method.",
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			marketRegistry.bidsPlaced,
			marketRegistry.bidsCancelled,
			marketRegistry.auctionsCompleted,
			marketRegistry.buyNowCompleted,
			marketRegistry.offersAccepted,
			marketRegistry.cancellations,
			marketRegistry.settlementVolume,
			marketRegistry.requestErrors,
		)
	})
	return marketRegistry
}

func (m *MarketMetrics) BidPlaced()        { m.bidsPlaced.Inc() }
func (m *MarketMetrics) BidCancelled()     { m.bidsCancelled.Inc() }
func (m *MarketMetrics) AuctionCompleted() { m.auctionsCompleted.Inc() }
func (m *MarketMetrics) BuyNowCompleted()  { m.buyNowCompleted.Inc() }
func (m *MarketMetrics) OfferAccepted()    { m.offersAccepted.Inc() }
func (m *MarketMetrics) Cancelled()        { m.cancellations.Inc() }

// SettlementVolume records settled volume for a transaction path. Volume is
// observed as a float for aggregation; exact amounts live in events.
func (m *MarketMetrics) SettlementVolume(path string, amount float64) {
	m.settlementVolume.WithLabelValues(path).Add(amount)
}

func (m *MarketMetrics) RequestError(method string) {
	m.requestErrors.WithLabelValues(method).Inc()
}
