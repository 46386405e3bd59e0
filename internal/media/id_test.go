package media

import (
	"strconv"
	"sync"
	"testing"
)

func TestNewRecordIDUnique(t *testing.T) {
	const n = 10000

	seen := make(map[string]struct{}, n)
	prev := int64(0)
	for i := 0; i < n; i++ {
		id := NewRecordID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = struct{}{}

		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			t.Fatalf("id %q is not a decimal int64: %v", id, err)
		}
		if v <= prev {
			t.Fatalf("id %d not greater than previous %d", v, prev)
		}
		prev = v
	}
}

func TestNewRecordIDConcurrent(t *testing.T) {
	const (
		goroutines = 16
		perG       = 500
	)

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, goroutines*perG)
		wg   sync.WaitGroup
	)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perG)
			for i := 0; i < perG; i++ {
				local = append(local, NewRecordID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id %q across goroutines", id)
				}
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perG {
		t.Fatalf("generated %d unique ids, want %d", len(seen), goroutines*perG)
	}
}
