package llm

import (
	"context"
	"errors"
	"testing"
)

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions(WithModel("m"), WithSystem("sys"), WithTemperature(0.2), WithMaxTokens(64))
	if o.Model != "m" || o.System != "sys" || o.MaxTokens != 64 {
		t.Errorf("ApplyOptions = %+v", o)
	}
	if o.Temperature == nil || *o.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", o.Temperature)
	}

	if zero := ApplyOptions(); zero.Temperature != nil || zero.Model != "" {
		t.Errorf("ApplyOptions() = %+v, want zero value", zero)
	}
}

func TestProviderError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewProviderError(ErrCodeTimeout, "slow", cause)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("ProviderError should unwrap to its cause")
	}
	var pe *ProviderError
	if !errors.As(error(err), &pe) || pe.Code != ErrCodeTimeout {
		t.Errorf("errors.As failed: %v", err)
	}
	if !err.IsRetryable() {
		t.Error("timeout should be retryable")
	}
	if NewProviderError(ErrCodeAuthentication, "denied", nil).IsRetryable() {
		t.Error("authentication failure should not be retryable")
	}
}
