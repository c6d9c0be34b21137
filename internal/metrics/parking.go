package metrics

import (
	"math"
	"time"
)

// Admission results
const (
	ResultAdmitted = "admitted"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
)

// AdmissionRecorded counts one admission attempt.
func AdmissionRecorded(class, result string) {
	AdmissionsTotal.WithLabelValues(class, result).Inc()
}

// OccupancyObserved sets the occupancy gauge. Classes without capacity are
// reported as zero since the ratio is undefined.
func OccupancyObserved(lot, class string, ratio float64) {
	if math.IsNaN(ratio) {
		ratio = 0
	}
	OccupancyRatio.WithLabelValues(lot, class).Set(ratio)
}

// RecordLoaded counts one applied record.
func RecordLoaded(kind string) {
	RecordsLoadedTotal.WithLabelValues(kind).Inc()
}

// SnapshotCompleted records a successful post-save step.
func SnapshotCompleted(target string, duration time.Duration) {
	SnapshotsTotal.WithLabelValues(target, "completed").Inc()
	SnapshotDuration.WithLabelValues(target).Observe(duration.Seconds())
}

// SnapshotFailed records a failed post-save step.
func SnapshotFailed(target string) {
	SnapshotsTotal.WithLabelValues(target, "failed").Inc()
}
