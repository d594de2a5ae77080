package duel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type serviceMetrics struct {
	gamesCreated  prometheus.Counter
	gamesFinished prometheus.Counter
	answers       prometheus.Counter
}

func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	factory := promauto.With(reg)
	return &serviceMetrics{
		gamesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "duel_games_created_total",
			Help: "Number of game sessions created.",
		}),
		gamesFinished: factory.NewCounter(prometheus.CounterOpts{
			Name: "duel_games_finished_total",
			Help: "Number of game sessions that reached the finished state.",
		}),
		answers: factory.NewCounter(prometheus.CounterOpts{
			Name: "duel_answers_submitted_total",
			Help: "Number of accepted answer submissions.",
		}),
	}
}
