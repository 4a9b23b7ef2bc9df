package reconnect

import "expvar"

var (
	metricAttemptTotal   = expvar.NewInt("reconnect_attempt_total")
	metricExhaustedTotal = expvar.NewInt("reconnect_exhausted_total")
	metricSkippedTotal   = expvar.NewInt("reconnect_trigger_skipped_total")
)
