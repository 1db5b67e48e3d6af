package metadata

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_SetGet(t *testing.T) {
	cache := NewCache[string, int](100)

	cache.Set("key1", 1)

	val, ok := cache.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != 1 {
		t.Errorf("expected 1, got %v", val)
	}
}

func TestCache_GetMissing(t *testing.T) {
	cache := NewCache[string, int](100)

	if _, ok := cache.Get("nonexistent"); ok {
		t.Error("expected key to not exist")
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := NewCache[string, int](2)

	cache.Set("a", 1)
	cache.Set("a", 2)

	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
	if v, _ := cache.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache[string, int](3)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	// Touch 'a' so 'b' becomes the least recently used.
	cache.Get("a")

	cache.Set("d", 4)

	if _, ok := cache.Peek("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := cache.Peek(key); !ok {
			t.Errorf("expected %q to be present", key)
		}
	}
	if cache.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cache.Len())
	}
}

func TestCache_FullCapacityPlusOne(t *testing.T) {
	const capacity = 8
	cache := NewCache[string, int](capacity)

	var evicted []string
	cache.OnEvict(func(key string, _ int) { evicted = append(evicted, key) })

	for i := 0; i <= capacity; i++ {
		cache.Set(fmt.Sprintf("k%d", i), i)
	}

	if len(evicted) != 1 || evicted[0] != "k0" {
		t.Errorf("evicted = %v, want [k0]", evicted)
	}
	if got := cache.Stats().Evictions; got != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", got)
	}
}

func TestCache_PeekDoesNotTouchRecency(t *testing.T) {
	cache := NewCache[string, int](2)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Peek("a")
	cache.Set("c", 3)

	if _, ok := cache.Peek("a"); ok {
		t.Error("expected 'a' to be evicted: Peek must not refresh recency")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	cache := NewCache[string, int](10)

	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Delete("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("expected 'a' to be deleted")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", cache.Len())
	}
}

func TestCache_Stats(t *testing.T) {
	cache := NewCache[string, int](10)

	cache.Set("a", 1)
	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 || stats.Capacity != 10 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCache_DefaultCapacity(t *testing.T) {
	cache := NewCache[string, int](0)
	if got := cache.Stats().Capacity; got != DefaultCacheCapacity {
		t.Errorf("Capacity = %d, want %d", got, DefaultCacheCapacity)
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache[int, int](50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				cache.Set(g*1000+i, i)
				cache.Get(g*1000 + i/2)
			}
		}(g)
	}
	wg.Wait()

	if cache.Len() > 50 {
		t.Errorf("Len() = %d exceeds capacity", cache.Len())
	}
}
