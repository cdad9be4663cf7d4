/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured log lines.

Both are exposed as domain.LifecycleHooks and can be combined:

	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks().Merge(observability.LogHooks(logger))
	eng := tapevm.New(tapevm.WithLifecycleHooks(hooks))
*/
package observability
