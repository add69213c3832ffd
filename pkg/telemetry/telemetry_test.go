package telemetry_test

import (
	"context"
	"testing"

	"github.com/go-petr/pet-ledger/pkg/telemetry"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "", "test-ledger")
	if err != nil {
		t.Fatalf("telemetry.Setup() returned error: %v", err)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() returned error: %v", err)
	}
}

func TestSetupCreatesProvider(t *testing.T) {
	// Non-routable address, nothing is exported.
	shutdown, err := telemetry.Setup(context.Background(), "http://192.0.2.1:4318", "test-ledger")
	if err != nil {
		t.Fatalf("telemetry.Setup() returned error: %v", err)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() returned error: %v", err)
	}
}
