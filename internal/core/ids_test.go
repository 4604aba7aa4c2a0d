package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := g.NewID()
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("not a uuid: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
