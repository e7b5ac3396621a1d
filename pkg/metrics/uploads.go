package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	UploadResultSuccess  = "success"
	UploadResultRejected = "rejected"
	UploadResultFailed   = "failed"
)

// UploadMetrics counts image relay attempts by outcome.
type UploadMetrics struct {
	total *prometheus.CounterVec
	bytes prometheus.Counter
}

func NewUploadMetrics(reg prometheus.Registerer) *UploadMetrics {
	if reg == nil {
		return &UploadMetrics{}
	}
	m := &UploadMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by result.",
		}, []string{"result"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes forwarded to object storage.",
		}),
	}
	reg.MustRegister(m.total, m.bytes)
	return m
}

func (u *UploadMetrics) Observe(result string, size int) {
	if u == nil || u.total == nil {
		return
	}
	u.total.WithLabelValues(normalizeLabel(result)).Inc()
	if result == UploadResultSuccess && size > 0 {
		u.bytes.Add(float64(size))
	}
}
