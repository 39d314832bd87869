package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatusWithoutDatabase(t *testing.T) {
	report := NewService(nil, "stub", false).Status(context.Background())
	if !report.OK || report.History != "memory" || report.Provider != "stub" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	ok := NewService(pingFunc(func(context.Context) error { return nil }), "anthropic", true).Status(context.Background())
	if !ok.OK || ok.History != "postgres" || !ok.PDF {
		t.Fatalf("unexpected report %+v", ok)
	}

	down := NewService(pingFunc(func(context.Context) error { return errors.New("refused") }), "anthropic", false).Status(context.Background())
	if down.OK || down.History != "unavailable" {
		t.Fatalf("unexpected report %+v", down)
	}
}
