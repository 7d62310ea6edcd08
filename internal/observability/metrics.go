package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// Metrics provides basic in-memory counters for the moderation pipeline.
type Metrics struct {
	mu               sync.Mutex
	requestCount     map[string]int64
	errorCount       map[string]int64
	analysisOutcomes map[domain.AnalysisState]int64
	punishments      map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:     make(map[string]int64),
		errorCount:       make(map[string]int64),
		analysisOutcomes: make(map[domain.AnalysisState]int64),
		punishments:      make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAnalysisOutcome counts terminal pipeline states.
func (m *Metrics) RecordAnalysisOutcome(state domain.AnalysisState) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysisOutcomes[state]++
}

// RecordPunishment counts applied punishments by kind and origin.
func (m *Metrics) RecordPunishment(kind domain.PunishmentKind, automated bool) {
	if m == nil {
		return
	}
	key := string(kind) + "|" + strconv.FormatBool(automated)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.punishments[key]++
}

// AnalysisOutcomes returns a copy of the outcome counters.
func (m *Metrics) AnalysisOutcomes() map[domain.AnalysisState]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.AnalysisState]int64, len(m.analysisOutcomes))
	for k, v := range m.analysisOutcomes {
		out[k] = v
	}
	return out
}
