package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Proxy holds the metrics of an engine proxy server.
type Proxy struct {
	Sessions       prometheus.Counter
	ActiveSessions prometheus.Gauge
	Requests       *prometheus.CounterVec
}

func NewProxy(reg prometheus.Registerer) *Proxy {
	factory := promauto.With(reg)
	return &Proxy{
		Sessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "vkproxy_sessions_total",
			Help: "Total number of client sessions served",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vkproxy_active_sessions",
			Help: "Number of client sessions being served",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vkproxy_requests_total",
			Help: "Total number of engine commands executed, by outcome",
		}, []string{"command", "outcome"}),
	}
}

func (p *Proxy) SessionStarted() {
	p.Sessions.Inc()
	p.ActiveSessions.Inc()
}

func (p *Proxy) SessionEnded() {
	p.ActiveSessions.Dec()
}

func (p *Proxy) ObserveRequest(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.Requests.WithLabelValues(command, outcome).Inc()
}
