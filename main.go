// Command digitalink replays a recorded ink session and prints what the
// recognizer makes of it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/thearijain/digitalink/config"
	"github.com/thearijain/digitalink/ink"
	"github.com/thearijain/digitalink/internal/app"
	"github.com/thearijain/digitalink/trace"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	var (
		tracePath   = flag.String("trace", "", "ink trace JSON file to replay (default: built-in demo)")
		realtime    = flag.Bool("realtime", false, "honor recorded event timing during replay")
		lang        = flag.String("lang", "", "override the configured recognition language tag")
		timeout     = flag.Duration("timeout", 2*time.Minute, "overall session timeout")
		verbose     = flag.Bool("v", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("digitalink %s (%s)\n", version, commit)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*tracePath, *lang, *realtime, *timeout); err != nil {
		slog.Error("session failed", "error", err)
		os.Exit(1)
	}
}

func run(tracePath, lang string, realtime bool, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lang != "" {
		cfg.DefaultLanguage = lang
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return err
	}
	if err := a.WaitModelReady(ctx); err != nil {
		return err
	}

	tr, err := loadTrace(tracePath)
	if err != nil {
		return err
	}
	slog.Info("replaying trace", "id", tr.ID, "events", len(tr.Events), "duration", tr.Duration())

	if err := a.RunTrace(ctx, tr, realtime); err != nil {
		return err
	}

	texts, detected := a.Summary()
	for i, text := range texts {
		fmt.Printf("%2d: %s\n", i+1, text)
	}
	if detected != "" {
		fmt.Printf("language: %s\n", detected)
	}
	return nil
}

func loadTrace(path string) (*trace.Trace, error) {
	if path != "" {
		return trace.Load(path)
	}
	return demoTrace(), nil
}

// demoTrace is a tiny three-point stroke so the binary does something useful
// without an input file.
func demoTrace() *trace.Trace {
	tr := trace.New()
	tr.Record(trace.PenDown, ink.Point{X: 10, Y: 10, T: 0})
	tr.Record(trace.PenMove, ink.Point{X: 20, Y: 20, T: 50})
	tr.Record(trace.PenUp, ink.Point{X: 30, Y: 30, T: 100})
	return tr
}
