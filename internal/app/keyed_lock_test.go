package app

import (
	"runtime"
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	var k keyedMutex
	var wg sync.WaitGroup
	counters := map[string]*int{"a": new(int), "b": new(int)}
	for i := 0; i < 100; i++ {
		key := "a"
		if i%2 == 1 {
			key = "b"
		}
		counter := counters[key]
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()
			v := *counter
			runtime.Gosched()
			*counter = v + 1
		}()
	}
	wg.Wait()
	if *counters["a"] != 50 || *counters["b"] != 50 {
		t.Fatalf("lost updates: a=%d b=%d", *counters["a"], *counters["b"])
	}
	if n := k.held(); n != 0 {
		t.Fatalf("expected every lock to be released, %d left", n)
	}
}
