// Package main is the entry point for the nexusvm operator console CLI.
// It wires the console core against a live backend: send guarded
// lifecycle actions or attach an interactive serial console to a VM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nexusvm/console/internal/config"
	"github.com/nexusvm/console/internal/domain"
	"github.com/nexusvm/console/internal/lifecycle"
	"github.com/nexusvm/console/internal/session"
	"github.com/nexusvm/console/internal/transport"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	vmID := flag.String("vm", "", "Target VM ID")
	action := flag.String("action", "", "Lifecycle action to send (start, stop, pause, resume, ctrl-alt-del, flush-metrics)")
	attach := flag.Bool("attach", false, "Attach an interactive console to the VM")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		println("NexusVM Operator Console")
		println("Version:", version)
		println("Commit:", commit)
		println("Build Date:", buildDate)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		println("Failed to load config:", err.Error())
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	defer logger.Sync()

	if *vmID == "" {
		logger.Fatal("A target VM is required, pass -vm <id>")
	}

	client := transport.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout, logger)

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal", zap.String("signal", sig.String()))
		cancel()
	}()

	switch {
	case *action != "":
		if err := sendAction(ctx, client, *vmID, *action, logger); err != nil {
			logger.Fatal("Action failed", zap.Error(err))
		}
	case *attach:
		dialer := transport.NewWSDialer(cfg.Backend.WSBaseURL, cfg.Session.HandshakeTimeout, logger)
		if err := attachConsole(ctx, client, dialer, *vmID, logger); err != nil {
			logger.Fatal("Console session failed", zap.Error(err))
		}
	default:
		showVM(ctx, client, *vmID, logger)
	}
}

// actionNames maps CLI spellings onto lifecycle actions.
var actionNames = map[string]domain.LifecycleAction{
	"start":         domain.ActionStart,
	"stop":          domain.ActionStop,
	"pause":         domain.ActionPause,
	"resume":        domain.ActionResume,
	"ctrl-alt-del":  domain.ActionCtrlAltDel,
	"flush-metrics": domain.ActionFlushMetrics,
}

// sendAction checks the lifecycle table for the VM's current state before
// forwarding the action, then reads the state back so the outcome shown
// is observed, not assumed.
func sendAction(ctx context.Context, client *transport.Client, vmID, name string, logger *zap.Logger) error {
	act, ok := actionNames[strings.ToLower(name)]
	if !ok {
		logger.Fatal("Unknown action", zap.String("action", name))
	}

	vm, err := client.GetVM(ctx, vmID)
	if err != nil {
		return err
	}

	if !lifecycle.IsAllowed(vm.State, act) {
		return fmt.Errorf("%w: %s while %s", domain.ErrActionNotAllowed, act, vm.State)
	}

	if err := client.SendAction(ctx, vmID, act); err != nil {
		return err
	}

	vm, err = client.GetVM(ctx, vmID)
	if err != nil {
		return err
	}
	logger.Info("Action sent",
		zap.String("action", string(act)),
		zap.String("state", string(vm.State)),
	)
	return nil
}

// attachConsole streams the VM's serial console to stdout and forwards
// stdin keystrokes until the context is cancelled.
func attachConsole(ctx context.Context, client *transport.Client, dialer *transport.WSDialer, vmID string, logger *zap.Logger) error {
	vm, err := client.GetVM(ctx, vmID)
	if err != nil {
		return err
	}
	if !vm.IsRunning() {
		logger.Warn("VM is not running, console output may be empty",
			zap.String("state", string(vm.State)),
		)
	}

	mgr := session.NewManager(vmID, dialer, dialer, logger)
	defer mgr.Teardown()

	if err := mgr.ConnectConsole(ctx, os.Stdout); err != nil {
		return err
	}
	logger.Info("Console attached, Ctrl+C to detach")

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				mgr.WriteConsole(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	return nil
}

// showVM prints the VM's observed state and which actions the lifecycle
// table allows from it.
func showVM(ctx context.Context, client *transport.Client, vmID string, logger *zap.Logger) {
	vm, err := client.GetVM(ctx, vmID)
	if err != nil {
		logger.Fatal("Failed to read VM", zap.Error(err))
	}

	actions := lifecycle.AllowedActions(vm.State)
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}

	logger.Info("VM status",
		zap.String("id", vm.ID),
		zap.String("name", vm.Name),
		zap.String("state", string(vm.State)),
		zap.Strings("allowed_actions", names),
	)
}

// setupLogger configures the zap logger based on configuration.
func setupLogger(cfg config.LoggingConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		panic("Failed to create logger: " + err.Error())
	}

	return logger
}
