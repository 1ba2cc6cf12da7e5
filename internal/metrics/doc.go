// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
Package metrics provides Prometheus-based metrics collection for brigade's
ambient surfaces: the bridge HTTP API and the SQL checkpoint store's
connection pool. Per-item scheduling metrics (dispatch, retries,
suspensions, flush latency) are emitted directly by scheduler.Metrics
instead, since they originate inside the dispatch loop rather than from a
request handler or a database connection pool.

# Core types

  - Collector: holds the Counter/Histogram/Gauge vectors, registered once
    via promauto under a caller-supplied namespace.

# Capabilities

  - HTTP metrics: request count, duration, request/response body size,
    grouped by method/path/status with status codes bucketed into
    2xx/3xx/4xx/5xx.
  - Database metrics: open/idle connection gauges and query duration
    histogram, grouped by database/operation.
*/
package metrics
