package logger

import "testing"

func TestInitLevelRejectsUnknownLevel(t *testing.T) {
	if err := InitLevel("development", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestGetAndNamed(t *testing.T) {
	Init("test")

	if Get() == nil {
		t.Fatal("expected a logger")
	}
	if Named("worker") == nil {
		t.Fatal("expected a named logger")
	}
	Sync()
}
