package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	AnswerCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_total",
			Help: "Recorded answers by question set and correctness",
		},
		[]string{"set", "result"},
	)

	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Submitted quizzes by question set and result tier",
		},
		[]string{"set", "tier"},
	)

	ScorePercent = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_score_percent",
			Help:    "Score percentage of submitted quizzes",
			Buckets: []float64{20, 40, 60, 80, 90, 99, 100},
		},
	)

	DocumentFetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_document_fetch_errors_total",
			Help: "Failed fetches of the question or content document",
		},
		[]string{"document"},
	)

	LiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_live_subscribers",
			Help: "Question sets with an open live page connection",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AnswerCounter,
			SubmissionCounter,
			ScorePercent,
			DocumentFetchErrors,
			LiveSubscribers,
		)
	})
}

func ObserveAnswer(set string, correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	AnswerCounter.WithLabelValues(set, result).Inc()
}

func ObserveSubmission(set, tier string, percent float64) {
	SubmissionCounter.WithLabelValues(set, tier).Inc()
	ScorePercent.Observe(percent)
}

func ObserveFetchError(document string) {
	DocumentFetchErrors.WithLabelValues(document).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
