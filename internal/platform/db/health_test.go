package db

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHealthReport_JSONShape(t *testing.T) {
	report := healthReport{
		Status: "healthy",
		Pool: PoolStats{
			TotalConns:      4,
			IdleConns:       3,
			AcquiredConns:   1,
			MaxConns:        10,
			AcquireCount:    120,
			AcquireDuration: "310ms",
			Healthy:         true,
		},
	}

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)

	for _, key := range []string{`"status":"healthy"`, `"total_conns":4`, `"max_conns":10`, `"healthy":true`} {
		if !strings.Contains(body, key) {
			t.Errorf("expected %s in payload, got %s", key, body)
		}
	}
	// A healthy report carries no error field.
	if strings.Contains(body, `"error"`) {
		t.Errorf("expected error field omitted, got %s", body)
	}
}

func TestHealthReport_UnhealthyCarriesError(t *testing.T) {
	report := healthReport{
		Status: "unhealthy",
		Error:  "connection refused",
		Pool:   PoolStats{Healthy: false},
	}

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)

	if !strings.Contains(body, `"error":"connection refused"`) {
		t.Errorf("expected error in payload, got %s", body)
	}
	if !strings.Contains(body, `"healthy":false`) {
		t.Errorf("expected healthy false, got %s", body)
	}
}
