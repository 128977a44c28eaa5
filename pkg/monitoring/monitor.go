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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// AnswersJudged 按练习类型和结果统计判题次数
	AnswersJudged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingua_answers_judged_total",
			Help: "Answers judged, by exercise type and outcome",
		},
		[]string{"type", "correct"},
	)

	CheckerFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingua_translation_checker_fallbacks_total",
			Help: "Translation checks that fell back to exact matching",
		},
		[]string{"reason"},
	)

	LessonsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingua_lessons_completed_total",
			Help: "Lesson completions, split by first completion and practice",
		},
		[]string{"mode"},
	)

	AchievementsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingua_achievements_granted_total",
			Help: "Achievements granted, by category",
		},
		[]string{"category"},
	)

	QuestsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingua_quests_completed_total",
			Help: "Quest instances completed, by quest type",
		},
		[]string{"quest_type"},
	)

	ShopPurchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingua_shop_purchases_total",
			Help: "Shop purchase attempts, by item and result",
		},
		[]string{"item", "result"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AnswersJudged,
			CheckerFallbacks,
			LessonsCompleted,
			AchievementsGranted,
			QuestsCompleted,
			ShopPurchases,
		)
	})
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
