package game

import "github.com/prometheus/client_golang/prometheus"

var (
	gamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawguess_games_started_total",
			Help: "Games whose countdown was started",
		},
		[]string{"kind"},
	)
	gamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawguess_games_finished_total",
			Help: "Games resolved, by outcome",
		},
		[]string{"kind", "result"},
	)
	sessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drawguess_game_sessions_active",
			Help: "Sessions currently held in the registry",
		},
		[]string{"kind"},
	)
	answersChecked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawguess_answers_total",
			Help: "Answers evaluated against a live game",
		},
		[]string{"correct"},
	)
)

func init() {
	prometheus.MustRegister(gamesStarted, gamesFinished, sessionsActive, answersChecked)
}
