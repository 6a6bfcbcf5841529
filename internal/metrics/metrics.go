// Package metrics records ledger engine activity.
package metrics

import "time"

// Collector receives ledger engine measurements. Implementations must be
// safe for concurrent use.
type Collector interface {
	// Snapshot rebuilds
	RecordRebuild(success bool, duration time.Duration)
	RecordSnapshot(version int64, categories, transactions, budgets int)

	// Writes through the service
	RecordMutation(entity, op string, success bool)

	// Persistence calls
	RecordStoreCall(op string, success bool, duration time.Duration)

	// Budget evaluation
	RecordEvaluation(status string)

	// Report cache
	RecordReportCache(report string, hit bool)

	// Change events
	RecordEventPublish(success bool)
}

// NoOpCollector discards every measurement.
type NoOpCollector struct{}

func (NoOpCollector) RecordRebuild(bool, time.Duration)           {}
func (NoOpCollector) RecordSnapshot(int64, int, int, int)         {}
func (NoOpCollector) RecordMutation(string, string, bool)         {}
func (NoOpCollector) RecordStoreCall(string, bool, time.Duration) {}
func (NoOpCollector) RecordEvaluation(string)                     {}
func (NoOpCollector) RecordReportCache(string, bool)              {}
func (NoOpCollector) RecordEventPublish(bool)                     {}

var _ Collector = NoOpCollector{}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func resultLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
