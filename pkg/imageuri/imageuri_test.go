package imageuri

import (
	"context"
	"testing"
)

func TestDataURIEncoder_Encode(t *testing.T) {
	enc := NewDataURIEncoder()

	got, err := enc.Encode(context.Background(), []byte("hello"), "image/png")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if want := "data:image/png;base64,aGVsbG8="; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestDataURIEncoder_Errors(t *testing.T) {
	enc := NewDataURIEncoder()

	if _, err := enc.Encode(context.Background(), nil, "image/png"); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := enc.Encode(context.Background(), []byte("x"), "text/plain"); err == nil {
		t.Error("expected error for non-image mime type")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := enc.Encode(ctx, []byte("x"), "image/png"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
