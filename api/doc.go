// Package api exposes label mapping over HTTP.
//
// Routes live under /api/v1 and are rejected with 503 until the service
// reports ready. Health, readiness and prometheus metrics are served at
// the root:
//
//	GET  /api/v1/drugs/:name/indications
//	GET  /api/v1/drugs?skip=0&limit=10
//	GET  /api/v1/drugs/search/:name
//	POST /api/v1/extract?kind=indications&format=xml
//	POST /api/v1/match
//	GET  /healthz
//	GET  /readyz
//	GET  /metrics
package api
