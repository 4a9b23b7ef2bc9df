package devserver

import "expvar"

var (
	metricGuestsTotal       = expvar.NewInt("devserver_guests_total")
	metricGamesCreatedTotal = expvar.NewInt("devserver_games_created_total")
	metricSocketsOpenTotal  = expvar.NewInt("devserver_sockets_open_total")
	metricSocketsDropTotal  = expvar.NewInt("devserver_sockets_dropped_total")
)
