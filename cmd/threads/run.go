package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/koineramitranjan/threads"
	"github.com/koineramitranjan/threads/internal/httpapi"
	"github.com/koineramitranjan/threads/internal/logging"
	"github.com/koineramitranjan/threads/pkg/config"
	"github.com/koineramitranjan/threads/pkg/observability"
)

var runCmd = &cobra.Command{
	Use:   "run <script> [script args...]",
	Short: "Run a script in a process worker and stream its events",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		runtime, _ := cmd.Flags().GetString("runtime")
		execArgv, _ := cmd.Flags().GetStringSlice("exec-argv")
		metricsAddr, _ := cmd.Flags().GetString("metrics")

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if runtime != "" {
			cfg.Runtime = runtime
		}

		tracker := threads.NewTracker()
		registry := prometheus.NewRegistry()
		collector := observability.NewCollector(registry)

		if metricsAddr != "" {
			handler := httpapi.NewHandler(trackerLister(tracker), registry)
			go func() {
				if err := http.ListenAndServe(metricsAddr, handler); err != nil {
					logger.Error("introspection server stopped", "err", err)
				}
			}()
			logger.Info("introspection server listening", "addr", metricsAddr)
		}

		opts := []threads.Option{
			threads.WithProcess(""),
			threads.WithConfig(cfg),
			threads.WithLogger(logger),
			threads.WithScript(args[0]),
			threads.WithArgs(args[1:]...),
			threads.WithHooks(collector.Hooks()),
			threads.WithTracker(tracker),
		}
		if cmd.Flags().Changed("exec-argv") {
			opts = append(opts, threads.WithExecArgv(execArgv...))
		}

		worker, err := threads.Spawn(opts...)
		if err != nil {
			fmt.Printf("Error spawning worker: %v\n", err)
			os.Exit(1)
		}

		exited := make(chan struct{})
		done := make(chan struct{})
		var terminal sync.Once
		finish := func() {
			terminal.Do(func() { close(done) })
		}
		failed := false
		worker.
			OnProgress(func(fraction float64) {
				fmt.Printf("progress: %.0f%%\n", fraction*100)
			}).
			OnMessage(func(values ...any) {
				for _, v := range values {
					fmt.Println(v)
				}
				finish()
			}).
			OnError(func(err error) {
				failed = true
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				finish()
			}).
			OnExit(func() {
				close(exited)
			})

		// One invocation per run; the script args already went in at
		// bootstrap time.
		worker.Send()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

		select {
		case <-interrupt:
			fmt.Println("\nInterrupted, killing worker...")
			worker.Kill()
			<-exited
		case <-done:
			worker.Kill()
			<-exited
		case <-exited:
		}

		if failed {
			os.Exit(1)
		}
	},
}

func trackerLister(tracker *threads.Tracker) httpapi.Lister {
	return httpapi.ListerFunc(func() []httpapi.WorkerInfo {
		workers := tracker.Workers()
		out := make([]httpapi.WorkerInfo, 0, len(workers))
		for _, w := range workers {
			out = append(out, httpapi.WorkerInfo{
				ID:        w.ID(),
				State:     w.State().String(),
				Transport: w.Transport().Name(),
			})
		}
		return out
	})
}

func init() {
	runCmd.Flags().String("runtime", "", "Bootstrap command executing the script (overrides config)")
	runCmd.Flags().StringSlice("exec-argv", nil, "Explicit execution flags, replacing inherited ones")
	runCmd.Flags().String("metrics", "", "Address for the introspection/metrics endpoint (e.g. :9090)")
	rootCmd.AddCommand(runCmd)
}
