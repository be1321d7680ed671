/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured log lines.

Both are plain domain.LifecycleHooks and can be registered side by side:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	driver, err := intake.New(v,
		intake.WithLifecycleHooks(metrics.Hooks()),
		intake.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
*/
package observability
