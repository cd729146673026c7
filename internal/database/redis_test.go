package database

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("expected connection to succeed, got %v", err)
	}
	client.Close()
}

func TestNewRedisClient_BadURL(t *testing.T) {
	if _, err := NewRedisClient("not a url"); err == nil {
		t.Fatal("expected error for malformed Redis URL")
	}
}
