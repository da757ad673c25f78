// Command previewd runs the editor-synchronization layer of the live document
// preview tool: a websocket control plane bridging a text editor to the
// document compiler and the rendering component.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/typlive/previewd/internal/actor"
	"github.com/typlive/previewd/internal/compiler"
	"github.com/typlive/previewd/internal/config"
	"github.com/typlive/previewd/internal/intern"
	"github.com/typlive/previewd/internal/logging"
	"github.com/typlive/previewd/internal/render"
	"github.com/typlive/previewd/internal/server"
	"github.com/typlive/previewd/internal/trace"
)

const version = "0.1.0"

// CLI defines the command-line interface for previewd.
var CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Serve the editor control plane"`
	Trace   TraceGroup `cmd:"" help:"Trace database operations"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ServeCmd runs the control-plane endpoint. Flags override the config file,
// which overrides built-in defaults.
type ServeCmd struct {
	Config         string   `help:"Path to TOML config file" type:"path"`
	Host           string   `help:"Listen host (overrides config)"`
	Port           int      `help:"Listen port (overrides config)"`
	AllowedOrigins []string `name:"allowed-origins" help:"Exact Origin values accepted for the websocket upgrade"`
	Retention      int      `help:"Span retention window in epochs (overrides config)"`
	TraceDB        string   `name:"trace-db" help:"Record control-plane sessions to this SQLite database" type:"path"`
	LogLevel       string   `name:"log-level" help:"debug, info, warn, or error (overrides config)"`
	LogFormat      string   `name:"log-format" help:"text or json (overrides config)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if len(c.AllowedOrigins) != 0 {
		cfg.AllowedOrigins = c.AllowedOrigins
	}
	if c.Retention != 0 {
		cfg.Retention = c.Retention
	}
	if c.TraceDB != "" {
		cfg.TraceDB = c.TraceDB
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))

	interner := intern.NewWithThreshold(cfg.Retention)
	comp := compiler.NewClient()
	renderer := render.NewHub()
	mailbox := make(chan actor.Request, 256)

	// The compiler and render components are separate collaborators; the
	// standalone binary drains their feeds at debug level so queues stay
	// bounded. An embedding build replaces these goroutines with the real
	// integrations, which also intern spans and reclaim epochs on the shared
	// interner and push events into the mailbox.
	go func() {
		for req := range comp.Requests() {
			logging.Debug("compiler request", "request", fmt.Sprintf("%T", req))
		}
	}()
	go func() {
		sub := renderer.Subscribe()
		for pos := range sub.Positions() {
			logging.Debug("viewport update", "page", pos.Page, "x", pos.X, "y", pos.Y)
		}
	}()

	return server.New(cfg, mailbox, comp, renderer, interner).ListenAndServe()
}

// TraceGroup holds trace database commands.
type TraceGroup struct {
	Export TraceExportCmd `cmd:"" help:"Compress a trace database for attaching to a bug report"`
}

// TraceExportCmd xz-compresses a trace database.
type TraceExportCmd struct {
	DB  string `arg:"" help:"Trace database file" type:"existingfile"`
	Out string `help:"Output path (default: <db>.xz)" type:"path"`
}

func (c *TraceExportCmd) Run() error {
	out := c.Out
	if out == "" {
		out = c.DB + ".xz"
	}
	if err := trace.Export(c.DB, out); err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("previewd %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("previewd"),
		kong.Description("Editor synchronization layer for live document preview"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
