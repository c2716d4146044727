// Package main is the entry point for the stormdrain input queue demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fastrand"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dshills/stormdrain/internal/capture"
	"github.com/dshills/stormdrain/internal/event"
	"github.com/dshills/stormdrain/internal/metrics"
	"github.com/dshills/stormdrain/internal/pipeline"
	"github.com/dshills/stormdrain/internal/router"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	synthetic   int
	duration    time.Duration
	metricsAddr string
	debug       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	log, err := newLogger(opts.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	log.Info("stormdrain starting",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("built", date))

	registry := router.New(router.WithLogger(log.Named("router")))
	rcv := registry.Register(event.WindowNone)

	p, err := pipeline.New[event.Input](registry.Route, pipeline.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start pipeline: %v\n", err)
		return 1
	}

	srv := startMetrics(opts.metricsAddr, p, log.Named("metrics"))

	// SIGINT and SIGTERM end the run. In interactive mode the terminal is
	// raw, so Ctrl-C arrives as a key event instead; the drainer spots it
	// and calls quit, which exercises the whole path on the way out.
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx := sigCtx
	if opts.duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, opts.duration)
		defer cancel()
	}
	runCtx, quit := context.WithCancel(runCtx)
	defer quit()

	d := newDrainer(rcv, quit, log.Named("drain"))
	d.start()

	var runErr error
	if opts.synthetic > 0 {
		runErr = runSynthetic(runCtx, p, opts.synthetic, log)
	} else {
		runErr = runInteractive(runCtx, p, log)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs error
	errs = multierr.Append(errs, p.Shutdown(shutdownCtx))
	d.stop()
	if srv != nil {
		errs = multierr.Append(errs, srv.Shutdown(shutdownCtx))
	}

	st := p.Stats()
	log.Info("final stats",
		zap.Uint64("pushed", st.Pushed),
		zap.Uint64("popped", st.Popped),
		zap.Uint64("expansions", st.Expansions),
		zap.Uint64("push_failures", st.PushFailures),
		zap.Uint64("max_capacity", st.MaxCapacity),
		zap.Uint64("routed", registry.Routed()),
		zap.Uint64("consumed", d.total()))

	if runErr != nil {
		return 1
	}
	if errs != nil {
		log.Error("shutdown errors", zap.Error(errs))
		return 1
	}
	return 0
}

// runInteractive captures real terminal input until the context ends.
func runInteractive(ctx context.Context, p *pipeline.Pipeline[event.Input], log *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	screen.EnableMouse()
	screen.EnablePaste()
	screen.EnableFocus()

	c, err := capture.New(screen, p, capture.WithLogger(log.Named("capture")))
	if err != nil {
		return err
	}
	if err := c.Start(); err != nil {
		return err
	}

	log.Info("capturing terminal input; press Escape or Ctrl-C to quit")
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop capture: %w", err)
	}

	st := c.Stats()
	log.Info("capture stopped",
		zap.Uint64("converted", st.Converted),
		zap.Uint64("dropped", st.Dropped),
		zap.Uint64("unknown", st.Unknown))
	return nil
}

// runSynthetic floods the pipeline from producer goroutines until the
// context ends.
func runSynthetic(ctx context.Context, p *pipeline.Pipeline[event.Input], producers int, log *zap.Logger) error {
	log.Info("synthetic mode", zap.Int("producers", producers))

	var rejected atomic.Uint64
	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func(id int) {
			defer wg.Done()
			var rng fastrand.RNG
			rng.Seed(uint32(id + 1))
			for ctx.Err() == nil {
				if err := p.Push(randomKey(&rng)); err != nil {
					rejected.Add(1)
					// At absolute capacity; let the consumer catch up.
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	wg.Wait()

	if n := rejected.Load(); n > 0 {
		return fmt.Errorf("%d pushes rejected at capacity", n)
	}
	return nil
}

// randomKey fabricates a plausible keystroke.
func randomKey(rng *fastrand.RNG) event.Input {
	ke := event.KeyEvent{
		Target: event.WindowNone,
		Key:    event.KeyRune,
		Rune:   rune('a' + rng.Uint32n(26)),
	}
	if rng.Uint32n(8) == 0 {
		ke.Modifiers = event.ModCtrl
	}
	return ke
}

// startMetrics serves /metrics on addr, or returns nil when disabled.
func startMetrics(addr string, source metrics.Source, log *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(source))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// drainer empties the broadcast receiver's inbox on a short tick and
// cancels the run when a quit key arrives.
type drainer struct {
	rcv      *router.Receiver
	quit     context.CancelFunc
	log      *zap.Logger
	consumed atomic.Uint64
	stopc    chan struct{}
	done     chan struct{}
}

func newDrainer(rcv *router.Receiver, quit context.CancelFunc, log *zap.Logger) *drainer {
	return &drainer{
		rcv:   rcv,
		quit:  quit,
		log:   log,
		stopc: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (d *drainer) start() {
	go d.loop()
}

// stop halts the loop after a final flush.
func (d *drainer) stop() {
	close(d.stopc)
	<-d.done
}

func (d *drainer) total() uint64 {
	return d.consumed.Load()
}

func (d *drainer) loop() {
	defer close(d.done)

	tick := time.NewTicker(25 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-d.stopc:
			d.flush()
			return
		case <-tick.C:
			d.flush()
		}
	}
}

func (d *drainer) flush() {
	for {
		batch := d.rcv.Drain(256)
		if len(batch) == 0 {
			return
		}
		d.consumed.Add(uint64(len(batch)))
		for _, env := range batch {
			if isQuitKey(env.Payload) {
				d.log.Info("quit key received")
				d.quit()
			}
			d.log.Debug("event",
				zap.Uint64("seq", env.Seq),
				zap.String("input", event.Describe(env.Payload)))
		}
	}
}

// isQuitKey recognizes Escape and Ctrl-C.
func isQuitKey(in event.Input) bool {
	ke, ok := in.(event.KeyEvent)
	if !ok {
		return false
	}
	if ke.Key == event.KeyEscape {
		return true
	}
	return ke.Key == event.KeyRune && ke.Rune == 'c' && ke.Modifiers.Has(event.ModCtrl)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.IntVar(&opts.synthetic, "synthetic", 0, "Number of synthetic producer goroutines (0 = interactive capture)")
	flag.DurationVar(&opts.duration, "duration", 0, "Run duration (0 = until signal or quit key)")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (empty = disabled)")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Stormdrain - expanding lock-free input event queue\n\n")
		fmt.Fprintf(os.Stderr, "Usage: stormdrain [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  stormdrain                             Capture terminal input (Escape to quit)\n")
		fmt.Fprintf(os.Stderr, "  stormdrain -synthetic 4 -duration 10s  Headless stress run\n")
		fmt.Fprintf(os.Stderr, "  stormdrain -metrics-addr :9090         Expose Prometheus metrics while running\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("stormdrain %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}
