// Package export serves the /metrics endpoint: a Prometheus text exposition
// of every live run's diagnostic rollup.
//
// Families:
//
//	chainspect_rhat{run,parameter}        — split Rhat per parameter
//	chainspect_neff_ratio{run,parameter}  — effective sample size ratio per parameter
//	chainspect_worst_bucket{run}          — severity rollup: 0 converged, 1 suspect, 2 divergent
//	chainspect_dropped_values{run}        — missing diagnostic values removed on the last read
//
// Stale runs are excluded, matching the REST API's not-found behaviour.
package export
