package http

import (
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
	"github.com/fyrsmithlabs/rfqd/internal/telemetry"
)

// ParseRequest is the request body for POST /api/v1/parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// BatchRequest is the request body for POST /api/v1/parse/batch. Texts takes
// precedence; Text is split on newlines with blank lines skipped.
type BatchRequest struct {
	Texts []string `json:"texts,omitempty"`
	Text  string   `json:"text,omitempty"`
}

// BatchResponse is the response body for POST /api/v1/parse/batch.
type BatchResponse struct {
	Count   int                  `json:"count"`
	Results []*rfq.ParsedRequest `json:"results"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Status    string                  `json:"status"`
	Version   string                  `json:"version,omitempty"`
	Mode      string                  `json:"mode"`
	Uptime    string                  `json:"uptime"`
	Services  map[string]string       `json:"services"`
	Telemetry *telemetry.HealthStatus `json:"telemetry,omitempty"`
}
