//go:build soak

package control

import (
	"fmt"
	"math/rand"
	"net/http"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/ringbuffer"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/testutil"
)

const (
	soakDuration   = 2 * time.Minute
	soakWriters    = 4
	restartEvery   = 3 * time.Second
	monitorEvery   = 500 * time.Millisecond
	parameterEvery = 20 * time.Millisecond
)

func TestSoakStability(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping soak test in short mode")
	}

	baseline := testutil.Baseline()
	t.Logf("baseline goroutines: %d", baseline)

	f := newFixture(t, fixtureOptions{monitor: ringbuffer.New(2, synth.SampleRate)})
	if rec := f.do(t, http.MethodPost, "/v1/start", ""); rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body.String())
	}

	var wg sync.WaitGroup
	stopCh := make(chan struct{})

	// Parameter writers hammer the setters while the null device renders.
	for i := 0; i < soakWriters; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			waves := synth.WaveKinds()
			ticker := time.NewTicker(parameterEvery)
			defer ticker.Stop()
			for {
				select {
				case <-stopCh:
					return
				case <-ticker.C:
					body := fmt.Sprintf(`{"frequency":%g,"volume":%g,"wave":%q}`,
						20+rng.Float64()*20000, rng.Float64(), waves[rng.Intn(len(waves))].String())
					if rec := f.do(t, http.MethodPut, "/v1/parameters", body); rec.Code != http.StatusOK {
						t.Errorf("set parameters: %d %s", rec.Code, rec.Body.String())
						return
					}
				}
			}
		}(int64(i))
	}

	// Lifecycle loop: stop and restart the stream periodically.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(restartEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				f.do(t, http.MethodPost, "/v1/stop", "")
				f.do(t, http.MethodPost, "/v1/start", "")
			}
		}
	}()

	// Monitor reader contends with the render callback for the ring.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(monitorEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				f.do(t, http.MethodGet, "/v1/monitor?ms=250", "")
			}
		}
	}()

	deadline := time.Now().Add(soakDuration)
	var memSamples []uint64
	sampleTicker := time.NewTicker(15 * time.Second)
	defer sampleTicker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-sampleTicker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			memSamples = append(memSamples, ms.HeapInuse)
			t.Logf("goroutines=%d heapInuse=%dKB frames=%d",
				runtime.NumGoroutine(), ms.HeapInuse/1024, f.eng.FramesRendered())
		default:
			time.Sleep(1 * time.Second)
		}
	}

	close(stopCh)
	wg.Wait()

	if err := f.eng.Stop(); err != nil {
		t.Errorf("final stop: %v", err)
	}

	time.Sleep(500 * time.Millisecond)
	runtime.GC()

	testutil.AssertNoGoroutineLeaks(t, baseline, 10)

	if len(memSamples) >= 4 {
		firstAvg := (memSamples[0] + memSamples[1]) / 2
		lastAvg := (memSamples[len(memSamples)-1] + memSamples[len(memSamples)-2]) / 2
		ratio := float64(lastAvg) / float64(firstAvg)
		t.Logf("memory ratio (last/first avg): %.2f", ratio)
		if ratio > 3.0 {
			t.Errorf("possible memory leak: first avg=%dKB, last avg=%dKB, ratio=%.2f",
				firstAvg/1024, lastAvg/1024, ratio)
		}
	}
}
