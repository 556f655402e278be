package services

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts auth outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	codesIssued    prometheus.Counter
	codesVerified  prometheus.Counter
	codesRejected  *prometheus.CounterVec
	resendThrottle prometheus.Counter
	dispatchFailed prometheus.Counter
	logins         *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tasklist", Subsystem: "verification", Name: "codes_issued_total",
			Help: "Verification codes persisted.",
		}),
		codesVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tasklist", Subsystem: "verification", Name: "codes_verified_total",
			Help: "Successful code verifications.",
		}),
		codesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasklist", Subsystem: "verification", Name: "codes_rejected_total",
			Help: "Rejected code verifications by reason.",
		}, []string{"reason"}),
		resendThrottle: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tasklist", Subsystem: "verification", Name: "resend_throttled_total",
			Help: "Resend requests refused by the cooldown.",
		}),
		dispatchFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tasklist", Subsystem: "notification", Name: "dispatch_failed_total",
			Help: "Verification e-mails that could not be delivered.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasklist", Subsystem: "auth", Name: "logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.codesIssued, m.codesVerified, m.codesRejected, m.resendThrottle, m.dispatchFailed, m.logins)
	}
	return m
}

func (m *Metrics) codeIssued() {
	if m != nil {
		m.codesIssued.Inc()
	}
}

func (m *Metrics) codeVerified() {
	if m != nil {
		m.codesVerified.Inc()
	}
}

func (m *Metrics) codeRejected(reason string) {
	if m != nil {
		m.codesRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) throttled() {
	if m != nil {
		m.resendThrottle.Inc()
	}
}

func (m *Metrics) dispatchFailure() {
	if m != nil {
		m.dispatchFailed.Inc()
	}
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}
