// Package observability provides the logging and metrics plumbing shared by
// the policy server: a zap logger built from configuration and the Prometheus
// collectors recorded by the HTTP layer and the policy services.
package observability
