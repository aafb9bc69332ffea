package uniq

import (
	"strings"
	"sync"
	"testing"
)

func TestNameIsUniqueAcrossGoroutines(t *testing.T) {
	const workers, perWorker = 8, 200
	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for range perWorker {
				local = append(local, Name("root"))
			}
			mu.Lock()
			defer mu.Unlock()
			for _, n := range local {
				if _, dup := seen[n]; dup {
					t.Errorf("duplicate name %q", n)
				}
				seen[n] = struct{}{}
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*perWorker {
		t.Fatalf("got %d names, want %d", len(seen), workers*perWorker)
	}
}

func TestNameKeepsPrefix(t *testing.T) {
	n := Name("root")
	if !strings.HasPrefix(n, "root_") {
		t.Fatalf("Name(root) = %q", n)
	}
	if Name("root") == n {
		t.Fatalf("consecutive names collided")
	}
}
