// Package exporter renders production series as CSV for the dashboard's
// download affordance. It writes to a stream, so the HTTP layer can hand
// it the response writer directly.
package exporter
