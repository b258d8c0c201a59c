package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/amilajack/corona/runtime"
	"github.com/amilajack/corona/sched"
)

func main() {
	var (
		workers     = flag.Int("workers", 2, "Number of pool workers")
		count       = flag.Int("n", 64, "Coroutines per wave")
		yields      = flag.Int("yields", 8, "Yields per coroutine")
		sleep       = flag.Duration("sleep", time.Millisecond, "Sleep between yields (0 disables)")
		waves       = flag.Int("waves", 3, "Waves to run in batch mode")
		eager       = flag.Bool("eager", false, "Spawn coroutines eagerly")
		lock        = flag.Bool("lock", false, "Pin workers to OS threads")
		interactive = flag.Bool("i", false, "Interactive TUI monitor")
	)
	flag.Parse()

	opts := []sched.Option{sched.WithWorkers(*workers)}
	if *lock {
		opts = append(opts, sched.WithLockOSThread())
	}
	pool := sched.NewPool(opts...)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = pool.Close(ctx)
	}()

	cfg := waveConfig{
		count:  *count,
		yields: *yields,
		sleep:  *sleep,
		eager:  *eager,
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(pool, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runBatch(pool, cfg, *waves); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// waveConfig shapes one wave of demo coroutines.
type waveConfig struct {
	count  int
	yields int
	sleep  time.Duration
	eager  bool
}

// runWave spawns a scoped wave of coroutines that yield and sleep,
// returning once every one of them is terminal.
func runWave(pool *sched.Pool, cfg waveConfig) (time.Duration, error) {
	start := time.Now()
	waveErr, err := runtime.Run(pool, func(aw *runtime.Await) error {
		var spawnFailed error
		scopeErr := runtime.Scoped(aw, func(sc *runtime.Scope) {
			for i := 0; i < cfg.count; i++ {
				b := runtime.NewBuilder().Pool(pool)
				if cfg.eager {
					b.Eager()
				}
				_, spawnErr := runtime.SpawnScoped(sc, b, func(child *runtime.Await) any {
					for j := 0; j < cfg.yields; j++ {
						if err := child.Yield(); err != nil {
							return err
						}
						if cfg.sleep > 0 {
							if err := child.Sleep(cfg.sleep); err != nil {
								return err
							}
						}
					}
					return nil
				})
				if spawnErr != nil {
					spawnFailed = spawnErr
					return
				}
			}
		})
		if spawnFailed != nil {
			return spawnFailed
		}
		return scopeErr
	})
	if err == nil {
		err = waveErr
	}
	return time.Since(start), err
}

func runBatch(pool *sched.Pool, cfg waveConfig, waves int) error {
	mode := "lazy"
	if cfg.eager {
		mode = "eager"
	}
	fmt.Printf("Pool: %d workers, %s spawn, %d coroutines x %d yields, sleep %s\n\n",
		pool.NumWorkers(), mode, cfg.count, cfg.yields, cfg.sleep)

	for i := 0; i < waves; i++ {
		dur, err := runWave(pool, cfg)
		if err != nil {
			return fmt.Errorf("wave %d: %w", i+1, err)
		}
		fmt.Printf("Wave %d: %d coroutines in %s\n", i+1, cfg.count, dur.Round(time.Microsecond))
	}

	fmt.Printf("\nWorkers:\n")
	for i := 0; i < pool.NumWorkers(); i++ {
		st := pool.Worker(i).Stats()
		fmt.Printf("  worker %d: spawned %d, resumes %d, completed %d, panicked %d\n",
			i, st.Spawned, st.Resumes, st.Completed, st.Panicked)
	}
	return nil
}
