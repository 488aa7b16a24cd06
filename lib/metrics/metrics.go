/*package metrics holds the Prometheus collectors used by nblist. They are
registered with the default registry when the package is loaded.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildsTotal counts neighbour lists built successfully.
	BuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nblist_builds_total",
		Help: "Total number of neighbour lists built",
	})

	// BuildErrorsTotal counts builds that returned an error, including
	// errors passed through from the pair enumerator.
	BuildErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nblist_build_errors_total",
		Help: "Total number of failed neighbour list builds",
	})

	// SortedBuildsTotal counts builds whose enumerator output wasn't grouped
	// by source site and had to be sorted.
	SortedBuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nblist_sorted_builds_total",
		Help: "Total number of builds that re-sorted enumerator output",
	})

	// PairsPerBuild tracks the number of pairs in each list.
	PairsPerBuild = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nblist_pairs_per_build",
		Help:    "Number of pairs in each built neighbour list",
		Buckets: prometheus.ExponentialBuckets(16, 4, 10),
	})

	// BuildDuration tracks the wall time of each build, enumeration
	// included.
	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nblist_build_duration_seconds",
		Help:    "Wall time of neighbour list builds",
		Buckets: prometheus.DefBuckets,
	})

	// FramesTotal counts configuration frames processed by the CLI, by mode.
	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nblist_frames_total",
		Help: "Total number of frames processed",
	}, []string{"mode"})

	// LogEntriesTotal counts log entries written by the CLI logger, by level.
	LogEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nblist_log_entries_total",
		Help: "Total number of log entries by level",
	}, []string{"level"})
)

// WriteTextfile writes every collector in the default registry to fileName
// in the Prometheus text format.
func WriteTextfile(fileName string) error {
	return prometheus.WriteToTextfile(fileName, prometheus.DefaultGatherer)
}
