package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	config := Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
		AddSource:   false,
	}

	InitLoggerWithWriter(config, &buf)

	Info("test message", "key", "value", "number", 42)

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if logEntry["service"] != "test-service" {
		t.Errorf("Expected service=test-service, got %v", logEntry["service"])
	}

	if logEntry["version"] != "1.0.0" {
		t.Errorf("Expected version=1.0.0, got %v", logEntry["version"])
	}

	if logEntry["environment"] != "test" {
		t.Errorf("Expected environment=test, got %v", logEntry["environment"])
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}

	if logEntry["key"] != "value" {
		t.Errorf("Expected key=value, got %v", logEntry["key"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	config := Config{
		Level:       "warn",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
	}

	InitLoggerWithWriter(config, &buf)

	Debug("should be dropped")
	Info("should be dropped too")
	Warn("should appear")

	if bytes.Count(buf.Bytes(), []byte("\n")) != 1 {
		t.Errorf("Expected exactly one log line, got output: %s", buf.String())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	id := GenerateRequestID()
	ctx := WithRequestID(context.Background(), id)

	got, ok := RequestIDFromContext(ctx)
	if !ok {
		t.Fatal("Expected request ID in context")
	}
	if got != id {
		t.Errorf("Expected %s, got %s", id, got)
	}

	if _, ok := RequestIDFromContext(context.Background()); ok {
		t.Error("Expected no request ID in empty context")
	}
}
