package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"parsetrace/internal/config"
	"parsetrace/internal/observ"
	"parsetrace/internal/prof"
	"parsetrace/internal/render"
	"parsetrace/internal/trace"
)

// errDiagnostics is returned once the diagnostics of a failed input have
// been printed; cobra stays silent about it.
var errDiagnostics = errors.New("input did not parse")

// app carries the state shared by the subcommands of one invocation.
type app struct {
	settings config.Settings
	quiet    bool
	color    bool
	log      commonlog.Logger

	sink trace.Sink      // shared event sink, nil when tracing is off
	ring *trace.RingSink // dumped when an input fails

	timer   *observ.Timer // nil unless --timings
	profile *prof.Session
}

// setup resolves the configuration for cmd. Values come from the defaults,
// then the config file, then flags the user set explicitly.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, found, err := config.LoadOrDefault(path, wd)
	if err != nil {
		return err
	}
	applyFlags(flags, &cfg)

	settings, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	a.settings = settings

	if a.quiet, err = flags.GetBool("quiet"); err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	verbosity, err := flags.GetCount("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if a.quiet {
		verbosity = -1
	}
	commonlog.Configure(verbosity, nil)
	a.log = commonlog.GetLogger("parsetrace")
	if found != "" {
		a.log.Infof("using config %s", found)
	}
	a.log.Debugf("grammar %s, strategy %s, trace level %s", settings.Grammar.Name, settings.Strategy, settings.Level)

	a.color = useColor(settings.Color, cmd.OutOrStdout())
	color.NoColor = !a.color

	if err := a.setupProfiling(flags); err != nil {
		return err
	}
	return a.setupTracing(cmd)
}

func (a *app) setupProfiling(flags *pflag.FlagSet) error {
	timings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		a.timer = observ.NewTimer()
	}

	var opts prof.Options
	for name, dst := range map[string]*string{"cpuprofile": &opts.CPU, "memprofile": &opts.Mem, "runtime-trace": &opts.Trace} {
		if *dst, err = flags.GetString(name); err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if !opts.Enabled() {
		return nil
	}
	if a.profile, err = prof.Start(opts); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	a.log.Infof("profiling enabled")
	return nil
}

// applyFlags copies the flags the user set onto cfg.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	strs := map[string]*string{
		"grammar":      &cfg.Grammar,
		"strategy":     &cfg.Strategy,
		"width":        &cfg.Width,
		"color":        &cfg.Color,
		"trace-level":  &cfg.Trace.Level,
		"trace-mode":   &cfg.Trace.Mode,
		"trace-format": &cfg.Trace.Format,
		"trace-out":    &cfg.Trace.Output,
		"base-dir":     &cfg.Input.BaseDir,
	}
	for name, dst := range strs {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	ints := map[string]*int{
		"context":         &cfg.Context,
		"jobs":            &cfg.Jobs,
		"trace-ring-size": &cfg.Trace.RingSize,
	}
	for name, dst := range ints {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst, _ = flags.GetInt(name)
		}
	}

	if f := flags.Lookup("nfc"); f != nil && f.Changed {
		cfg.Input.NFC, _ = flags.GetBool("nfc")
	}
}

func useColor(mode config.ColorMode, w io.Writer) bool {
	switch mode {
	case config.ColorOn:
		return true
	case config.ColorOff:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func (a *app) renderOptions(path string) render.Options {
	return render.Options{
		Width:   a.settings.Width,
		Context: a.settings.Context,
		Color:   a.color,
		Path:    path,
	}
}

// fail dumps the ring buffer, releases the sink and returns the silent
// diagnostics error. PersistentPostRunE does not run after an error, so
// commands call it themselves.
func (a *app) fail(cmd *cobra.Command) error {
	cmd.SilenceErrors = true
	if a.ring != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "last %d trace events:\n", len(a.ring.Snapshot()))
		if err := a.ring.Dump(cmd.ErrOrStderr(), a.settings.Format); err != nil {
			a.log.Warningf("dump trace ring: %s", err)
		}
	}
	if err := a.teardown(cmd); err != nil {
		a.log.Warningf("teardown: %s", err)
	}
	return errDiagnostics
}

// teardown closes the trace sink, stops the profilers and prints the phase
// timings.
func (a *app) teardown(cmd *cobra.Command) error {
	var errs []error
	if a.sink != nil {
		errs = append(errs, a.sink.Close())
		a.sink, a.ring = nil, nil
	}
	if a.profile != nil {
		errs = append(errs, a.profile.Stop())
		a.profile = nil
	}
	if a.timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), a.timer.Summary())
		a.timer = nil
	}
	return errors.Join(errs...)
}
