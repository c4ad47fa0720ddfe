// Package middleware provides observability for head rendering.
//
// This package includes:
//   - a Prometheus observer counting emitted, duplicate and missing resources
//     and timing each render phase
//   - an OpenTelemetry observer recording render events on the request span
//   - HTTP tracing middleware starting that span
//
// # Prometheus Metrics
//
//	metrics := middleware.Prometheus(middleware.WithNamespace("shop"))
//	renderer := head.NewRenderer(cfg, head.WithObserver(metrics))
//
// Metrics collected:
//   - headkit_resources_total: resources requested, by kind and outcome
//   - headkit_render_duration_seconds: EncodeBegin and EncodeEnd duration
//   - headkit_render_errors_total: failed render phases, by error code
//   - headkit_init_scripts_total: initialization fragments written
//
// Expose them with promhttp:
//
//	r.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry wraps an http.Handler in a server span; Tracing adds head
// render events to whatever span is active in the render context:
//
//	r.Use(middleware.OpenTelemetry())
//	renderer := head.NewRenderer(cfg, head.WithObserver(middleware.Tracing()))
package middleware
