package app

import (
	"errors"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name:     "with target",
			err:      NewOperationError("open", "main.go", errors.New("permission denied")),
			expected: "open main.go: permission denied",
		},
		{
			name:     "without target",
			err:      NewOperationError("render fold", "", ErrLineUnavailable),
			expected: "render fold: fold start line unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	err := NewOperationError("open", "main.go", ErrNoDocument)

	if !errors.Is(err, ErrNoDocument) {
		t.Error("expected errors.Is to find wrapped sentinel")
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatal("expected errors.As to match *OperationError")
	}
	if opErr.Op != "open" {
		t.Errorf("expected op 'open', got %q", opErr.Op)
	}
}
