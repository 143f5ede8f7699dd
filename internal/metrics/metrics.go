package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API 指标
var (
	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenthub_api_requests_total",
			Help: "API 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration API 请求延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenthub_api_request_duration_seconds",
			Help:    "API 请求延迟分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// 导出与下载指标
var (
	// ExportsStarted 发起的导出次数
	ExportsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agenthub_exports_started_total",
		Help: "发起的智能体配置导出次数",
	})

	// ExportsSucceeded 成功的导出次数
	ExportsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agenthub_exports_succeeded_total",
		Help: "成功完成的智能体配置导出次数",
	})

	// ExportsFailed 失败的导出次数
	ExportsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agenthub_exports_failed_total",
		Help: "失败的智能体配置导出次数",
	})

	// DownloadsServed 成功兑换令牌的下载次数
	DownloadsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agenthub_downloads_served_total",
		Help: "令牌校验通过并完成的下载次数",
	})

	// DownloadsRejected 令牌校验失败的下载次数
	DownloadsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agenthub_downloads_rejected_total",
		Help: "令牌校验失败被拒绝的下载次数",
	})
)
