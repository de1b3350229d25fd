package utils

import "testing"

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	if err != nil {
		t.Fatalf("NewLogger(true) error: %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger(true) returned nil logger")
	}
	_ = logger.Sync()

	logger, err = NewLogger(false)
	if err != nil {
		t.Fatalf("NewLogger(false) error: %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger(false) returned nil logger")
	}
	_ = logger.Sync()
}
