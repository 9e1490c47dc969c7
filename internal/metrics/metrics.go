// Package metrics は、ページ取得と質問応答の Prometheus メトリクスを定義します。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 結果ラベルの値です。
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultCanceled = "canceled"
	ResultRejected = "rejected"
)

var (
	// FetchTotal はページ取得の試行回数を結果別に数えます。
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webaichat",
		Name:      "fetch_total",
		Help:      "Number of website fetches by result.",
	}, []string{"result"})

	// FetchDuration はページ取得にかかった時間です。キャンセルされた試行は含みません。
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "webaichat",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of completed website fetches.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	// AskTotal は質問の回数を結果別に数えます。
	// rejected はページ未取得やAPIキー未設定でAPIを呼ばなかった場合です。
	AskTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webaichat",
		Name:      "ask_total",
		Help:      "Number of questions asked by result.",
	}, []string{"result"})

	// ActiveSessions はWeb UIで保持しているセッション数です。
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "webaichat",
		Name:      "active_sessions",
		Help:      "Number of browser sessions held by the server.",
	})
)
