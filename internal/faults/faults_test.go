package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"tagged input error", Newf(KindInput, "missing field"), KindInput},
		{"tagged audit error", New(KindAudit, errors.New("insert failed")), KindAudit},
		{"wrapped tagged error", fmt.Errorf("handler: %w", Newf(KindData, "orphan")), KindData},
		{"plain error defaults to dependency", errors.New("dial tcp: refused"), KindDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicyTable(t *testing.T) {
	tests := []struct {
		kind Kind
		want Action
	}{
		{KindInput, Reject},
		{KindDependency, Degrade},
		{KindData, SelfHeal},
		{KindAudit, Swallow},
	}
	for _, tt := range tests {
		if got := PolicyFor(tt.kind); got != tt.want {
			t.Errorf("PolicyFor(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := New(KindDependency, inner)
	if !errors.Is(err, inner) {
		t.Error("wrapped error should unwrap to the original")
	}
}
