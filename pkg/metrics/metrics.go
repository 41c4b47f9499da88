// Package metrics provides the Prometheus registry shared by the YUDL tools.
// All metrics are defined in their respective packages (client, pagination,
// fids, fixity) and registered via promauto.
//
// The tools are batch jobs, so there is no scrape endpoint: a run can write
// its final metric values to a file for the node exporter's textfile
// collector instead.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the YUDL tools.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes all registered metrics to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - yudl_requests_total{endpoint, status} (Counter): Requests by endpoint path and HTTP status
//   - yudl_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint path
//   - yudl_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Pagination Metrics (pkg/pagination):
//   - yudl_pagination_pages_total (Counter): Pages requested
//   - yudl_pagination_records_total (Counter): Records emitted in batches
//   - yudl_pagination_stops_total{reason} (Counter): Listings ended, by stop reason
//
// Sink Metrics (pkg/fids, pkg/fixity):
//   - yudl_fids_written_total{category} (Counter): Fids written by category
//   - yudl_fixity_rows_written_total (Counter): Fixity report rows written
//   - yudl_fixity_entries_total{state} (Counter): Fixity entries by reported state
//
// Example Prometheus Queries:
//
//   # Listings that ended on an error instead of running out of data
//   sum by (reason) (yudl_pagination_stops_total{reason=~"http_status|transport_error|invalid_json"})
//
//   # Failed fixity checks in the last report
//   yudl_fixity_entries_total{state!="passed"}
