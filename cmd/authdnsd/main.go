// Command authdnsd is the server shell: it loads a zone table from a
// binary config stream on stdin, binds a UDP endpoint, and answers
// queries out of that table until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnsscience/authdns/internal/acl"
	"github.com/dnsscience/authdns/internal/configstream"
	"github.com/dnsscience/authdns/internal/eventbus"
	"github.com/dnsscience/authdns/internal/metrics"
	"github.com/dnsscience/authdns/internal/ratelimit"
	"github.com/dnsscience/authdns/internal/shellconfig"
	"github.com/dnsscience/authdns/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	shellConfigPath = flag.String("config", "", "path to a shellconfig YAML file (optional)")
	addr            = flag.String("addr", transport.DefaultAddr, "UDP listen address")
	workers         = flag.Int("workers", transport.DefaultWorkers, "number of worker goroutines")
	metricsAddr     = flag.String("metrics", "", "HTTP address for /metrics (disabled if empty)")
	printStats      = flag.Bool("stats", true, "print statistics periodically")
)

func main() {
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                                                              ║")
	fmt.Println("║                   authdnsd - Authoritative DNS                ║")
	fmt.Println("║                                                              ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()

	opts := transport.Options{Addr: *addr, Workers: *workers}
	if *shellConfigPath != "" {
		applyShellConfig(*shellConfigPath, &opts)
	}

	fmt.Println("Loading configuration stream from stdin...")
	cfg, err := configstream.Load(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	opts.Config = cfg
	fmt.Printf("  Zones loaded:   %d\n", len(cfg.Zones))
	fmt.Println()

	bus := eventbus.New(64)
	opts.Bus = bus

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go collector.Run(ctx, bus)
	records := 0
	for _, name := range cfg.Lookup.Names() {
		for _, typ := range cfg.Lookup.Types(name) {
			rrset, _ := cfg.Lookup.Lookup(name, typ)
			records += len(rrset)
		}
	}
	bus.Publish(eventbus.TopicConfig, eventbus.ConfigEvent{Zones: len(cfg.Zones), Records: records})

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, reg)
	}

	srv, err := transport.Listen(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: bind failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Listening on %s with %d workers\n\n", opts.Addr, opts.Workers)
	go srv.Serve()

	if *printStats {
		go printStatsLoop(srv)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println()

	if err := srv.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
		os.Exit(1)
	}
}

func applyShellConfig(path string, opts *transport.Options) {
	f, err := shellconfig.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: loading shell config: %v\n", err)
		os.Exit(1)
	}
	if f.Listen != "" {
		opts.Addr = f.Listen
	}
	if f.Workers > 0 {
		opts.Workers = f.Workers
	}
	if f.MetricsListen != "" {
		*metricsAddr = f.MetricsListen
	}
	if f.ACL != nil {
		list := acl.New(f.ACL.DefaultAllow)
		for _, cidr := range f.ACL.Allow {
			if err := list.Allow(cidr); err != nil {
				fmt.Fprintf(os.Stderr, "fatal: acl allow %q: %v\n", cidr, err)
				os.Exit(1)
			}
		}
		for _, cidr := range f.ACL.Deny {
			if err := list.Deny(cidr); err != nil {
				fmt.Fprintf(os.Stderr, "fatal: acl deny %q: %v\n", cidr, err)
				os.Exit(1)
			}
		}
		opts.ACL = list
	}
	if f.RateLimit != nil {
		rlCfg := ratelimit.DefaultConfig()
		rlCfg.QueriesPerSecond = f.RateLimit.QueriesPerSecond
		rlCfg.Burst = f.RateLimit.Burst
		if f.RateLimit.CleanupInterval > 0 {
			rlCfg.CleanupInterval = f.RateLimit.CleanupInterval
		}
		opts.Limiter = ratelimit.New(rlCfg)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
	}
}

func printStatsLoop(srv *transport.Server) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var lastQueries uint64
	lastTime := time.Now()

	for range ticker.C {
		stats := srv.Stats()
		now := time.Now()
		elapsed := now.Sub(lastTime).Seconds()
		qps := float64(stats.Queries-lastQueries) / elapsed

		fmt.Printf("═══════════════════════════════════════════════════════════\n")
		fmt.Printf("Statistics (%.1fs interval):\n", elapsed)
		fmt.Printf("  Queries:   %10d  (%.0f qps)\n", stats.Queries, qps)
		fmt.Printf("  Answers:   %10d\n", stats.Answers)
		fmt.Printf("  Errors:    %10d\n", stats.Errors)
		fmt.Printf("  NXDOMAIN:  %10d\n", stats.NXDomains)
		fmt.Printf("═══════════════════════════════════════════════════════════\n\n")

		lastQueries = stats.Queries
		lastTime = now
	}
}
