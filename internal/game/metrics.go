package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wordsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_words_accepted_total",
			Help: "Words appended to stories, by source.",
		},
		[]string{"source"},
	)
	submissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_submissions_rejected_total",
			Help: "Rejected word submissions, by reason.",
		},
		[]string{"reason"},
	)
	forfeits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ows_turn_forfeits_total",
			Help: "Turns lost to the clock.",
		},
	)
	storiesClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_stories_closed_total",
			Help: "Stories closed, by trigger.",
		},
		[]string{"trigger"},
	)
	generatorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_generator_fallbacks_total",
			Help: "Deterministic fallbacks used after a generator failure.",
		},
		[]string{"kind"},
	)
	activeStories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ows_active_stories",
			Help: "Stories currently accepting words.",
		},
	)
)
