// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
// news.Recorder / translate.Recorder を実装し、サービス層と翻訳クライアント
// から利用される。
type Collector struct {
	newsCreated           prometheus.Counter
	sentencesCommitted    prometheus.Counter
	translationsSubmitted prometheus.Counter
	newsDeleted           prometheus.Counter
	translateSuccess      prometheus.Counter
	translateFail         prometheus.Counter
	translateLatency      prometheus.Histogram
	httpStatus            *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		newsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "translearn_news_created_total",
			Help: "作成されたニュース記事の合計数",
		}),
		sentencesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "translearn_sentences_committed_total",
			Help: "下書き確定で作成された文の合計数",
		}),
		translationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "translearn_translations_submitted_total",
			Help: "英訳提出の合計数",
		}),
		newsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "translearn_news_deleted_total",
			Help: "削除されたニュース記事の合計数",
		}),
		translateSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "translearn_translate_success_total",
			Help: "機械翻訳呼び出し成功の合計数",
		}),
		translateFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "translearn_translate_fail_total",
			Help: "機械翻訳呼び出し失敗の合計数",
		}),
		translateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "translearn_translate_latency_seconds",
			Help:    "機械翻訳呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "translearn_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.newsCreated,
		c.sentencesCommitted,
		c.translationsSubmitted,
		c.newsDeleted,
		c.translateSuccess,
		c.translateFail,
		c.translateLatency,
		c.httpStatus,
	)

	return c
}

// NewsCreated は記事作成を記録する。
func (c *Collector) NewsCreated() {
	c.newsCreated.Inc()
}

// SentencesCommitted は下書き確定で作成された文数を記録する。
func (c *Collector) SentencesCommitted(n int) {
	c.sentencesCommitted.Add(float64(n))
}

// TranslationsSubmitted は英訳提出を記録する。
func (c *Collector) TranslationsSubmitted() {
	c.translationsSubmitted.Inc()
}

// NewsDeleted は記事削除を記録する。
func (c *Collector) NewsDeleted() {
	c.newsDeleted.Inc()
}

// TranslateObserved は機械翻訳呼び出しの結果とレイテンシを記録する。
func (c *Collector) TranslateObserved(success bool, duration time.Duration) {
	if success {
		c.translateSuccess.Inc()
	} else {
		c.translateFail.Inc()
	}
	c.translateLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
