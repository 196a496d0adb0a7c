// Command vkenroll enrolls fingers into a local print store and verifies
// them against it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-ctap/vkapi/pkg/config"
	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/printstore"
	"github.com/go-ctap/vkapi/pkg/sugar"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 2
	}

	cmd := flag.NewFlagSet(args[0], flag.ExitOnError)
	cfgPath := cmd.String("config", "", "Path to the YAML configuration")
	envPath := cmd.String("env", ".env", "Path to an optional .env file")
	fingerName := cmd.String("finger", fprint.RightIndex.String(), "Finger to enroll, verify or delete")

	switch args[0] {
	case "enroll", "verify", "list", "delete":
		_ = cmd.Parse(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return 2
	}

	cfg, err := config.FromFlags(*cfgPath, *envPath)
	if err != nil {
		return fail(err)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := printstore.New(cfg.Store.Dir, []byte(cfg.Store.Secret), options.WithLogger(logger))
	if err != nil {
		return fail(err)
	}

	if args[0] == "list" {
		return fail(list(store))
	}

	finger, ok := fprint.ParseFinger(*fingerName)
	if !ok {
		return fail(fmt.Errorf("unknown finger %q", *fingerName))
	}

	if args[0] == "delete" {
		return fail(store.Delete(finger))
	}

	sess, err := openSession(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	if args[0] == "enroll" {
		return fail(enroll(ctx, sess.Session, store, finger))
	}

	match, err := verify(ctx, sess.Session, store, finger)
	if err != nil {
		return fail(err)
	}
	if !match {
		fmt.Println("No match")
		return 1
	}
	fmt.Println("Match")
	return 0
}

func enroll(ctx context.Context, sess *sugar.Session, store *printstore.Store, finger fprint.Finger) error {
	total := sess.Device().NrEnrollStages
	fmt.Printf("Enrolling %s, place your finger on the sensor\n", finger)

	pd, err := sess.Enroll(ctx, func(stage int) {
		fmt.Printf("Stage %d/%d passed, lift and place your finger again\n", stage, total)
	})
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}

	if err := store.Save(finger, pd); err != nil {
		return err
	}
	fmt.Printf("Enrolled %s\n", finger)
	return nil
}

func verify(ctx context.Context, sess *sugar.Session, store *printstore.Store, finger fprint.Finger) (bool, error) {
	pd, err := store.Load(finger)
	if err != nil {
		return false, err
	}

	fmt.Printf("Verifying %s, place your finger on the sensor\n", finger)
	match, err := sess.Verify(ctx, pd)
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	return match, nil
}

func list(store *printstore.Store) error {
	fingers, err := store.List()
	if err != nil {
		return err
	}
	for _, f := range fingers {
		fmt.Println(f)
	}
	return nil
}

func fail(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted")
	}
	slog.Error("vkenroll failed", "error", err)
	return 1
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: vkenroll <command> [flags]

Commands:
  enroll   Capture a finger and store its print
  verify   Capture a finger and compare it with the stored print
  list     List enrolled fingers
  delete   Remove a stored print

Flags:
  -config  Path to the YAML configuration
  -env     Path to an optional .env file (default .env)
  -finger  Finger name, e.g. right-index (default right-index)`)
}
