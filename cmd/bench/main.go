// Command bench drives a synthetic lookup workload through one cache preset
// (cache + coalescer) and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/fetchcache/config"
	"github.com/IvanBrykalov/fetchcache/fetch"
	"github.com/IvanBrykalov/fetchcache/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ---- Flags ----
	var (
		cfgPath = flag.String("config", "", "YAML config file (empty = built-in presets)")
		preset  = flag.String("preset", config.PresetGeocoding, "cache preset to exercise")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		latency  = flag.Duration("latency", 20*time.Millisecond, "simulated upstream latency per fetch")
		failPct  = flag.Int("fail", 0, "simulated upstream failure percentage [0..100]")

		keys  = flag.Int("keys", 10_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	closer, err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			slog.Info("pprof: serving", slog.String("addr", *pprofAddr))
			slog.Error("pprof: stopped", slog.Any("error", http.ListenAndServe(*pprofAddr, nil)))
		}()
	}

	// ---- Presets, with Prometheus metrics on the default registry ----
	reg, err := fetch.NewRegistry[string](cfg, fetch.RegistryOptions[string]{
		Logger:     slog.Default(),
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		slog.Error("bench: bad config", slog.Any("error", err))
		os.Exit(1)
	}
	defer reg.Close()

	f, ok := reg.Get(*preset)
	if !ok {
		slog.Error("bench: unknown preset", slog.String("preset", *preset), slog.Any("known", cfg.Names()))
		os.Exit(1)
	}

	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("metrics: serving", slog.String("addr", *metricsAddr))
			slog.Error("metrics: stopped", slog.Any("error", http.ListenAndServe(*metricsAddr, nil)))
		}()
	}

	// ---- Snapshot flags for goroutines ----
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var total, fetches, failures uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, *zipfS, *zipfV, keysMax)

			for ctx.Err() == nil {
				k := "city:" + strconv.FormatUint(localZipf.Uint64(), 10)
				fail := localR.Intn(100) < *failPct
				atomic.AddUint64(&total, 1)

				_, err := f.Get(ctx, k, func(ctx context.Context) (string, error) {
					atomic.AddUint64(&fetches, 1)
					select {
					case <-time.After(*latency):
					case <-ctx.Done():
						return "", ctx.Err()
					}
					if fail {
						return "", fmt.Errorf("upstream: simulated failure for %s", k)
					}
					return "payload:" + k, nil
				})
				if err != nil && ctx.Err() == nil {
					atomic.AddUint64(&failures, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	st := f.Stats()
	hitRate := 0.0
	if st.Hits+st.Misses > 0 {
		hitRate = float64(st.Hits) / float64(st.Hits+st.Misses) * 100
	}

	fmt.Printf("preset=%s workers=%d keys=%d dur=%v seed=%d\n",
		*preset, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  upstream fetches=%d  failures=%d\n",
		ops, float64(ops)/elapsed.Seconds(), atomic.LoadUint64(&fetches), atomic.LoadUint64(&failures))
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n",
		st.Hits, st.Misses, hitRate, st.Evictions)
	fmt.Printf("entries=%d  memory=%d bytes\n", st.Entries, st.MemoryBytes)
}
