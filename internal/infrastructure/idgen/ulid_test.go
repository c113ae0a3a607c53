package idgen

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGenerator_Generate(t *testing.T) {
	gen := NewULIDGenerator()

	seen := make(map[string]struct{})
	prev := ""
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if _, err := ulid.ParseStrict(id); err != nil {
			t.Fatalf("invalid ULID %q: %v", id, err)
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate ID %q", id)
		}
		if id < prev {
			t.Fatalf("IDs not monotonic: %q after %q", id, prev)
		}
		seen[id] = struct{}{}
		prev = id
	}
}
