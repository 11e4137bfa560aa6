package sim

import (
	"errors"
	"testing"

	"btc-journal-lab/internal/domain"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		op      domain.TriggerOp
		level   float64
		wantErr bool
	}{
		{name: "long breakout", text: "15m close >= 87362.71", op: domain.TriggerGE, level: 87362.71},
		{name: "short breakdown", text: "15m close <= 86893.04", op: domain.TriggerLE, level: 86893.04},
		{name: "integer level", text: "close >= 90000", op: domain.TriggerGE, level: 90000},
		{name: "tight spacing", text: "15m close>=101.5", op: domain.TriggerGE, level: 101.5},
		{name: "empty", text: "", wantErr: true},
		{name: "no operator", text: "15m close crosses 87000", wantErr: true},
		{name: "no level", text: "15m close >= ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, level, err := ParseTrigger(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTrigger) {
					t.Fatalf("expected ErrMalformedTrigger, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTrigger failed: %v", err)
			}
			if op != tt.op {
				t.Errorf("expected op %q, got %q", tt.op, op)
			}
			if level != tt.level {
				t.Errorf("expected level %f, got %f", tt.level, level)
			}
		})
	}
}
