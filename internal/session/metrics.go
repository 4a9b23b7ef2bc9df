package session

import "expvar"

var (
	metricConnectTotal     = expvar.NewInt("session_connect_total")
	metricConnectedTotal   = expvar.NewInt("session_connected_total")
	metricFailedTotal      = expvar.NewInt("session_failed_total")
	metricRemoteCloseTotal = expvar.NewInt("session_remote_close_total")
	metricDecodeDropTotal  = expvar.NewInt("session_decode_dropped_total")
	metricSendDroppedTotal = expvar.NewInt("session_send_dropped_total")
	metricFramesInTotal    = expvar.NewInt("session_frames_in_total")
	metricFramesOutTotal   = expvar.NewInt("session_frames_out_total")
)
