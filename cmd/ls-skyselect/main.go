// Command ls-skyselect is a terminal sky viewer for dragging out RA/Dec
// selections and sending them to a retrieve log server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/footprint"
	"github.com/litescript/ls-skyselect/internal/logging"
	"github.com/litescript/ls-skyselect/internal/logserver"
	"github.com/litescript/ls-skyselect/internal/payload"
	"github.com/litescript/ls-skyselect/internal/screen"
	"github.com/litescript/ls-skyselect/internal/selection"
	"github.com/litescript/ls-skyselect/internal/state"
	"github.com/litescript/ls-skyselect/internal/ui"
	"github.com/litescript/ls-skyselect/internal/version"
	"github.com/litescript/ls-skyselect/internal/wcs"
)

// CLI flags
var (
	logLevel    string
	logFile     string
	raLimit     float64
	decLimit    float64
	postURL     string
	telescopes  string
	footprints  string
	serve       bool
	serverOnly  bool
	addr        string
	headless    bool
	startFlag   string
	endFlag     string
	width       float64
	height      float64
	fitsPath    string
	postResult  bool
	showVersion bool
)

func main() {
	defCfg := ui.DefaultConfig()

	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Write logs to file (TUI mode discards logs otherwise)")
	flag.Float64Var(&raLimit, "ra-limit", *defCfg.Limit.RA, "Max RA half-width around the drag anchor in degrees (negative: unbounded)")
	flag.Float64Var(&decLimit, "dec-limit", *defCfg.Limit.Dec, "Max Dec half-width around the drag anchor in degrees (negative: unbounded)")
	flag.StringVar(&postURL, "post-url", payload.DefaultURL, "Log server URL for committed selections")
	flag.StringVar(&telescopes, "telescopes", "Euclid:NIR_H+NIR_J+NIR_Y", "Telescopes and filters to request, e.g. Euclid:NIR_H+NIR_J,WISE:1")
	flag.StringVar(&footprints, "footprints", "euclid", "Footprints to draw, comma separated (euclid, desi, twomass, wise, all)")
	flag.BoolVar(&serve, "serve", false, "Also run the log server")
	flag.BoolVar(&serverOnly, "server-only", false, "Run only the log server")
	flag.StringVar(&addr, "addr", logserver.DefaultConfig().Addr, "Log server listen address")
	flag.BoolVar(&headless, "headless", false, "Clip one selection and print it as JSON instead of the TUI")
	flag.StringVar(&startFlag, "start", "", "Headless drag start pixel x,y")
	flag.StringVar(&endFlag, "end", "", "Headless drag end pixel x,y")
	flag.Float64Var(&width, "width", 400, "Headless viewport width in pixels")
	flag.Float64Var(&height, "height", 400, "Headless viewport height in pixels")
	flag.StringVar(&fitsPath, "fits", "", "Headless: read pixels through the WCS of this FITS header")
	flag.BoolVar(&postResult, "post", false, "Headless: also post the selection")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.UserAgent)
		return
	}

	// Set up logging
	logger := logging.New(logging.ParseLevel(logLevel))
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	selected, err := parseTelescopes(telescopes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	limit := limitFromFlags(raLimit, decLimit)
	client := payload.NewClient(payload.WithURL(postURL))

	switch {
	case headless:
		opts := headlessOptions{
			start:      startFlag,
			end:        endFlag,
			viewport:   screen.Viewport{Width: width, Height: height},
			fitsPath:   fitsPath,
			limit:      limit,
			telescopes: selected,
			overlays:   splitList(footprints),
			pretty:     term.IsTerminal(int(os.Stdout.Fd())),
		}
		if postResult {
			opts.poster = client
		}
		err = runHeadless(ctx, os.Stdout, opts, logger)

	case serverOnly:
		store := state.NewManager(state.DefaultConfig())
		err = newServer(store, logger).ListenAndServe(ctx)

	default:
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: the viewer needs a terminal; use -headless or -server-only")
			os.Exit(2)
		}
		if logFile == "" {
			logger.SetOutput(io.Discard)
		}

		cfg := ui.DefaultConfig()
		cfg.Limit = limit
		cfg.Telescopes = selected
		cfg.Overlays = splitList(footprints)
		err = runTUI(ctx, cancel, cfg, client, logger)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(store *state.Manager, logger *logging.Logger) *logserver.Server {
	cfg := logserver.DefaultConfig()
	cfg.Addr = addr
	return logserver.New(cfg, store, logger, nil)
}

// runTUI runs the viewer and, with -serve, the log server sharing one store.
// Quitting the viewer stops the server.
func runTUI(ctx context.Context, cancel context.CancelFunc, cfg ui.Config, client *payload.Client, logger *logging.Logger) error {
	store := state.NewManager(state.DefaultConfig())
	p := tea.NewProgram(ui.New(cfg, store, client, logger), tea.WithAltScreen(), tea.WithMouseAllMotion())

	g, gctx := errgroup.WithContext(ctx)

	if serve {
		srv := newServer(store, logger)
		g.Go(func() error { return srv.ListenAndServe(gctx) })
	}

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	return g.Wait()
}

// headlessOptions configures a one-shot selection.
type headlessOptions struct {
	start, end string
	viewport   screen.Viewport
	fitsPath   string
	limit      *selection.Limit
	telescopes map[string][]string
	overlays   []string
	pretty     bool
	poster     ui.Poster
}

// headlessResult is what -headless prints.
type headlessResult struct {
	Projection string                       `json:"projection"`
	Corners    [4]astro.Equatorial          `json:"corners"`
	Clipped    bool                         `json:"clipped"`
	Bounds     footprint.Bounds             `json:"bounds"`
	Overlaps   map[string]footprint.Overlap `json:"overlaps,omitempty"`
	Payload    *payload.Payload             `json:"payload,omitempty"`
	Posted     bool                         `json:"posted,omitempty"`
}

func runHeadless(ctx context.Context, w io.Writer, opts headlessOptions, logger *logging.Logger) error {
	start, err := parsePixel(opts.start)
	if err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	end, err := parsePixel(opts.end)
	if err != nil {
		return fmt.Errorf("-end: %w", err)
	}

	var proj selection.Projector = selection.DiskProjector{Viewport: opts.viewport}
	name := "disk"
	if opts.fitsPath != "" {
		t, err := wcs.LoadHeader(opts.fitsPath)
		if err != nil {
			return err
		}
		proj = selection.WCSProjector{Transform: t}
		name = "wcs"
	}

	region := selection.Clip(start, end, proj, opts.limit)
	logger.Debug("clipped %v-%v via %s: clipped=%t", start, end, name, region.Clipped)

	res := headlessResult{
		Projection: name,
		Corners:    region.Corners,
		Clipped:    region.Clipped,
		Bounds:     region.Bounds(),
	}
	if len(opts.overlays) > 0 {
		res.Overlaps = footprint.OverlapInfo(res.Bounds, opts.overlays)
	}

	if len(opts.telescopes) > 0 {
		p, err := payload.Build(opts.telescopes, region.Corners[:])
		if err != nil {
			return fmt.Errorf("build payload: %w", err)
		}
		res.Payload = &p

		if opts.poster != nil {
			if err := opts.poster.Post(ctx, p); err != nil {
				return fmt.Errorf("post selection: %w", err)
			}
			res.Posted = true
		}
	}

	enc := json.NewEncoder(w)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

// parsePixel parses "x,y".
func parsePixel(s string) (screen.Pixel, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return screen.Pixel{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return screen.Pixel{}, fmt.Errorf("parse x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return screen.Pixel{}, fmt.Errorf("parse y: %w", err)
	}
	p := screen.Pixel{X: x, Y: y}
	if !p.Finite() {
		return screen.Pixel{}, errors.New("pixel must be finite")
	}
	return p, nil
}

// parseTelescopes parses "Label:f1+f2,Label2:f3". A label with no filters
// requests none.
func parseTelescopes(s string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, item := range splitList(s) {
		label, filters, _ := strings.Cut(item, ":")
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("telescope entry %q has no name", item)
		}
		if _, ok := payload.LookupTelescope(label); !ok {
			return nil, fmt.Errorf("unknown telescope %q", label)
		}
		if _, dup := out[label]; dup {
			return nil, fmt.Errorf("telescope %q listed twice", label)
		}

		chosen := []string{}
		for _, f := range strings.Split(filters, "+") {
			if f = strings.TrimSpace(f); f != "" {
				chosen = append(chosen, f)
			}
		}
		out[label] = chosen
	}
	return out, nil
}

// limitFromFlags maps negative half-widths to unbounded axes. With both axes
// unbounded there is no limit at all.
func limitFromFlags(ra, dec float64) *selection.Limit {
	if ra < 0 && dec < 0 {
		return nil
	}
	l := &selection.Limit{}
	if ra >= 0 {
		l.RA = &ra
	}
	if dec >= 0 {
		l.Dec = &dec
	}
	return l
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
