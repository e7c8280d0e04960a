package usecase

// Metrics receives conversation and completion outcomes. The observability
// collector implements it; nil means no recording.
type Metrics interface {
	RecordReply(tier, route string)
	RecordLookup(outcome string)
	RecordCompletion(purpose, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordReply(string, string)      {}
func (nopMetrics) RecordLookup(string)             {}
func (nopMetrics) RecordCompletion(string, string) {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
