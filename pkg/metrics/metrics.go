package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recsync"

var (
	// JobsConsumed 从队列取出的消息数
	JobsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_consumed_total",
		Help:      "Jobs dequeued from the main queue.",
	}, []string{"queue"})

	// JobsSucceeded 处理成功并确认的消息数
	JobsSucceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_succeeded_total",
		Help:      "Jobs processed successfully and acknowledged.",
	}, []string{"queue"})

	// JobsPurged 不可解析被清除的消息数
	JobsPurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_purged_total",
		Help:      "Malformed jobs purged from the processing list.",
	}, []string{"queue"})

	// JobsDeadLettered 转入死信列表的消息数
	JobsDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_dead_lettered_total",
		Help:      "Jobs rerouted to the dead letter list.",
	}, []string{"queue"})

	// JobsParked 处理失败滞留暂存列表的消息数
	JobsParked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_parked_total",
		Help:      "Jobs left in the processing list after a failure.",
	}, []string{"queue"})

	// JobsRecovered 恢复扫描搬回主列表的消息数
	JobsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_recovered_total",
		Help:      "Stale jobs moved back to the main queue by the recovery sweep.",
	}, []string{"queue"})

	// JobDuration 单条消息处理耗时
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Time spent processing a single job.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"queue"})

	// QueuePending 主列表长度（恢复扫描时采样）
	QueuePending = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_pending",
		Help:      "Length of the main queue list.",
	}, []string{"queue"})

	// QueueProcessing 暂存列表长度（恢复扫描时采样）
	QueueProcessing = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_processing",
		Help:      "Length of the processing list.",
	}, []string{"queue"})
)

// Serve 启动指标 HTTP 服务，阻塞直到监听出错
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
