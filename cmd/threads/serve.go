package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/koineramitranjan/threads"
	"github.com/koineramitranjan/threads/internal/httpapi"
	"github.com/koineramitranjan/threads/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the worker introspection server",
	Long:  `Starts the introspection server, exposing the live worker list and Prometheus metrics as a JSON/HTTP API.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")

		srv := newServeServer(":" + port)

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting introspection server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Introspection server stopped gracefully")
		}
	},
}

// newServeServer assembles the introspection HTTP server over a fresh
// tracker and a metrics registry carrying the lifecycle collector.
func newServeServer(addr string) *http.Server {
	tracker := threads.NewTracker()
	registry := prometheus.NewRegistry()
	observability.NewCollector(registry)

	return &http.Server{
		Addr:    addr,
		Handler: httpapi.NewHandler(trackerLister(tracker), registry),
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "9090", "Port to listen on")
}
