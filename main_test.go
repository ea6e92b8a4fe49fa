package main

import (
	"testing"

	"github.com/leocezardev/pifc/repository"
	"github.com/leocezardev/pifc/services"
)

func TestInitStore_MemoryFallback(t *testing.T) {
	config := &services.Config{}

	store, rawDB := initStore(config)
	if rawDB != nil {
		t.Fatalf("expected no database handle without a database URL, got %v", rawDB)
	}
	if _, ok := store.(*repository.MemoryStore); !ok {
		t.Fatalf("expected in-memory store without a database URL, got %T", store)
	}
}
