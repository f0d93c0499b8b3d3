// Command stream-producer ingests structured records from a bounded
// source and publishes them as JSON messages to exactly one downstream
// sink. Subcommands are named <format>-to-<sink>, plus the
// administrative sleep, version, and docker-acceptance-test commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/senzing-garage/stream-producer/internal/adminserver"
	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/metrics"
	"github.com/senzing-garage/stream-producer/internal/pipeline"
	"github.com/senzing-garage/stream-producer/internal/sink"
	"github.com/senzing-garage/stream-producer/internal/source"
)

// version is overwritten at release build time via -ldflags.
var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <subcommand> [flags]", os.Args[0])
	}
	subcommand := os.Args[1]
	args := os.Args[2:]

	var err error
	switch subcommand {
	case "version":
		fmt.Println(version)
		return
	case "sleep":
		err = runSleep(args)
	case "docker-acceptance-test":
		err = runAcceptanceServer(args)
	default:
		err = runPipelineSubcommand(subcommand, args)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

// runSleep implements the administrative sleep subcommand: sleep
// delay_in_seconds and exit 0. Deployment tooling uses this to verify
// the binary starts before wiring traffic.
func runSleep(args []string) error {
	fs := flag.NewFlagSet("sleep", flag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadIgnoringInputURL(fs)
	if err != nil {
		return err
	}
	log.Printf("sleeping for %d seconds", cfg.DelayInSeconds)
	time.Sleep(time.Duration(cfg.DelayInSeconds) * time.Second)
	return nil
}

// loadIgnoringInputURL loads config without enforcing the
// input_url-is-required validation the pipeline subcommands need,
// since sleep/docker-acceptance-test take no input.
func loadIgnoringInputURL(fs *flag.FlagSet) (*config.Snapshot, error) {
	if err := fs.Set("input-url", "unused"); err != nil {
		return nil, err
	}
	return config.Load(fs)
}

// runAcceptanceServer starts the admin diagnostics server and blocks
// until a termination signal is received. It backs the
// docker-acceptance-test subcommand: orchestration tooling can curl
// /healthz to confirm the image starts and serves traffic.
func runAcceptanceServer(args []string) error {
	fs := flag.NewFlagSet("docker-acceptance-test", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	m := metrics.New()
	m.SetWorkersStarted(0)
	srv := &http.Server{Addr: ":8080", Handler: adminserver.New(m)}

	go func() {
		log.Printf("docker-acceptance-test: serving on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("docker-acceptance-test: server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// runPipelineSubcommand parses a <format>-to-<sink> subcommand name,
// resolves the configuration snapshot, and runs the pipeline until
// STOPPED or a fatal source error.
func runPipelineSubcommand(subcommand string, args []string) error {
	format, sinkKind, err := parseSubcommand(subcommand)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet(subcommand, flag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if cfg.DelayInSeconds > 0 {
		log.Printf("delaying start by %d seconds", cfg.DelayInSeconds)
		time.Sleep(time.Duration(cfg.DelayInSeconds) * time.Second)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Println("received shutdown signal, cancelling pipeline")
		cancel()
	}()

	p := pipeline.New(cfg, format, sinkKind)
	return p.Run(ctx)
}

// parseSubcommand splits a "<format>-to-<sink>" subcommand name into
// its source.Format and sink.Kind, per the subcommand surface in
// spec §6.
func parseSubcommand(subcommand string) (source.Format, sink.Kind, error) {
	parts := strings.SplitN(subcommand, "-to-", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("unknown subcommand %q", subcommand)
	}
	format := source.Format(parts[0])
	sinkKind := sink.Kind(parts[1])

	switch format {
	case source.FormatAvro, source.FormatCSV, source.FormatJSON,
		source.FormatGzippedJSON, source.FormatParquet, source.FormatWebsocket:
	default:
		return "", "", fmt.Errorf("unknown format %q", format)
	}

	switch sinkKind {
	case sink.KindKafka, sink.KindRabbitMQ, sink.KindSQS, sink.KindStdout:
	default:
		return "", "", fmt.Errorf("unknown sink %q", sinkKind)
	}

	return format, sinkKind, nil
}
