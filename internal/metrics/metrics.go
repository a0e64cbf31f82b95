// Package metrics exposes Prometheus counters for the server's request
// pipeline over an HTTP /metrics endpoint. It learns about requests by
// subscribing to internal/eventbus rather than being called directly from
// the hot path, keeping the query handler free of any metrics dependency.
package metrics

import (
	"context"
	"net/http"

	"github.com/dnsscience/authdns/internal/eventbus"
	"github.com/dnsscience/authdns/internal/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics this server publishes.
type Collector struct {
	queriesTotal *prometheus.CounterVec
	zonesLoaded  prometheus.Gauge
	recordsLoaded prometheus.Gauge
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authdns_queries_total",
			Help: "Queries answered, labeled by response code.",
		}, []string{"rcode"}),
		zonesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "authdns_zones_loaded",
			Help: "Number of authoritative zone apexes currently loaded.",
		}),
		recordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "authdns_records_loaded",
			Help: "Number of resource records currently loaded.",
		}),
	}
	reg.MustRegister(c.queriesTotal, c.zonesLoaded, c.recordsLoaded)
	return c
}

// Run subscribes to bus and updates the collector's metrics until ctx is
// cancelled. Meant to run in its own goroutine.
func (c *Collector) Run(ctx context.Context, bus *eventbus.Bus) {
	queries := bus.Subscribe(ctx, eventbus.TopicQuery)
	defer queries.Close()
	configs := bus.Subscribe(ctx, eventbus.TopicConfig)
	defer configs.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-queries.Ch:
			if !ok {
				return
			}
			qe := ev.Data.(eventbus.QueryEvent)
			c.queriesTotal.WithLabelValues(rcodeLabel(qe.Rcode)).Inc()
		case ev, ok := <-configs.Ch:
			if !ok {
				return
			}
			ce := ev.Data.(eventbus.ConfigEvent)
			c.zonesLoaded.Set(float64(ce.Zones))
			c.recordsLoaded.Set(float64(ce.Records))
		}
	}
}

func rcodeLabel(rcode uint8) string {
	switch rcode {
	case message.RCodeNoError:
		return "noerror"
	case message.RCodeFormErr:
		return "formerr"
	case message.RCodeServFail:
		return "servfail"
	case message.RCodeNXDomain:
		return "nxdomain"
	case message.RCodeNotImp:
		return "notimp"
	case message.RCodeRefused:
		return "refused"
	default:
		return "unknown"
	}
}

// Handler returns the HTTP handler to mount at /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
