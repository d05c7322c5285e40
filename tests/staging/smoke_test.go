//go:build staging

package staging

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	resp, _ := makeRequest(t, "GET", "/healthz", nil)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestReadiness(t *testing.T) {
	resp, _ := makeRequest(t, "GET", "/readyz", nil)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestMetricsExposed(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/metrics", nil)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if len(body) == 0 {
		t.Error("Expected non-empty metrics output")
	}
}

type periodResponse struct {
	ID       int64  `json:"id"`
	OpenAt   string `json:"open_at"`
	CloseAt  string `json:"close_at"`
	Official bool   `json:"official"`
}

func TestLatestPeriod(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/periods/latest", nil)

	// A freshly provisioned environment may not have opened a period yet
	if resp.StatusCode == http.StatusNotFound {
		t.Skip("No periods opened yet")
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var period periodResponse
	if err := json.Unmarshal(body, &period); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if period.ID == 0 {
		t.Error("Expected a non-zero period ID")
	}
}

func TestAuditTrailQueryable(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/audit?limit=10", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
}

func TestRejectsMissingAPIKey(t *testing.T) {
	req, err := http.NewRequest("GET", stagingURL+"/api/v1/periods/latest", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}
