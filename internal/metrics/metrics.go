// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	ObserveRecipeMutation(op string)
	ObserveMembershipChange(kind, op string)
	ObserveShoppingListDownload(lines int)
	ObserveCatalogCache(result string)
	RecordSessionsCleaned(count int64)
}

// 買い物リストの行数ヒストグラムのバケット
var shoppingListLineBuckets = []float64{0, 5, 10, 20, 50, 100, 200}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	recipesCreated    prometheus.Counter
	recipesUpdated    prometheus.Counter
	recipesDeleted    prometheus.Counter
	membershipChanges *prometheus.CounterVec
	listDownloads     prometheus.Counter
	listLines         prometheus.Histogram
	httpStatus        *prometheus.CounterVec
	catalogCache      *prometheus.CounterVec
	sessionsCleaned   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		recipesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_recipes_created_total",
			Help: "作成されたレシピの合計数",
		}),
		recipesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_recipes_updated_total",
			Help: "更新されたレシピの合計数",
		}),
		recipesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_recipes_deleted_total",
			Help: "削除されたレシピの合計数",
		}),
		membershipChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_membership_changes_total",
			Help: "お気に入り・買い物リストの追加/削除数",
		}, []string{"kind", "op"}),
		listDownloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "買い物リストのダウンロード数",
		}),
		listLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_lines",
			Help:    "ダウンロードされた買い物リストの集計行数",
			Buckets: shoppingListLineBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		catalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_catalog_cache_total",
			Help: "食材・タグキャッシュの参照結果別の回数",
		}, []string{"result"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.recipesCreated,
		c.recipesUpdated,
		c.recipesDeleted,
		c.membershipChanges,
		c.listDownloads,
		c.listLines,
		c.httpStatus,
		c.catalogCache,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// ObserveRecipeMutation はレシピの作成・更新・削除を記録する。未知の操作は無視する。
func (c *Collector) ObserveRecipeMutation(op string) {
	switch op {
	case "create":
		c.recipesCreated.Inc()
	case "update":
		c.recipesUpdated.Inc()
	case "delete":
		c.recipesDeleted.Inc()
	}
}

// ObserveMembershipChange はお気に入り・買い物リストの変更を記録する。
func (c *Collector) ObserveMembershipChange(kind, op string) {
	c.membershipChanges.WithLabelValues(kind, op).Inc()
}

// ObserveShoppingListDownload は買い物リストのダウンロードと行数を記録する。
func (c *Collector) ObserveShoppingListDownload(lines int) {
	c.listDownloads.Inc()
	c.listLines.Observe(float64(lines))
}

// ObserveCatalogCache はキャッシュの参照結果（hit/miss/error）を記録する。
func (c *Collector) ObserveCatalogCache(result string) {
	c.catalogCache.WithLabelValues(result).Inc()
}

// RecordSessionsCleaned は削除したセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsをアプリケーションのハンドラーと並べて公開するHTTPハンドラーを返す。
// /metrics へのリクエストはappのミドルウェアチェーンを通らない。
func SetupMetricsRoute(gatherer prometheus.Gatherer, app http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	if app != nil {
		mux.Handle("/", app)
	}
	return mux
}

var _ MetricsCollector = (*Collector)(nil)
