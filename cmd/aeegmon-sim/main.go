// aeegmon-sim is the developer harness for the acquisition/DSP chain: a
// synthetic 4-channel source feeds the double buffer, the DSP goroutine
// runs it through the filter/aEEG/histogram/pyramid pipeline, and a
// Bubble Tea dashboard renders the live trend so the chain can be
// exercised without real hardware attached.
//
// Usage:
//
//	aeegmon-sim [-verbose] [-quiet] [-config otto.yaml] [-gap-every 0]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"

	"github.com/aeegmon/core/internal/acquisition"
	"github.com/aeegmon/core/internal/alarm"
	"github.com/aeegmon/core/internal/audit"
	"github.com/aeegmon/core/internal/config"
	"github.com/aeegmon/core/internal/dashboard"
	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/filter"
	"github.com/aeegmon/core/internal/logger"
	"github.com/aeegmon/core/internal/param"
	"github.com/aeegmon/core/internal/render"
	"github.com/aeegmon/core/internal/timebase"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".aeegmon-logs/sim.log", "file to write logs to (use \"stderr\" to log to console)")
	configPath := flag.String("config", "", "path to a device/filter config file (yaml/json/toml); empty uses built-in filter defaults")
	maxSamples := flag.Int("samples", 0, "stop after N simulated samples (0 = run until interrupted)")
	gapEvery := flag.Int("gap-every", 0, "mark every Nth sample Missing on all channels to exercise gap handling (0 disables)")
	ringSeconds := flag.Int("ring-seconds", 60, "seconds of filtered history kept in the display ring")
	auditCap := flag.Int("audit-capacity", 200, "number of recent audit events retained in memory")
	noAlarm := flag.Bool("no-alarm", false, "disable the audible alarm sink even if an audio device is available")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Filter table: from a config file if given, otherwise the shipped
	// coefficient placeholders.
	filterTable := filter.BuiltinTable()
	if *configPath != "" {
		cfg, err := config.Load(*configPath, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: loading config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		filterTable = cfg.ResolvedFilterTable()
	}

	auditSink := audit.NewRingSink(*auditCap, log)

	paramCtrl, err := param.New(param.DefaultSettings(), auditSink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: building parameter controller: %v\n", err)
		os.Exit(1)
	}

	var alarmSink domain.AlarmSink
	if !*noAlarm {
		sink, err := alarm.NewSink(log)
		if err != nil {
			log.Warn("alarm sink init failed, alarms disabled: %v", err)
		} else {
			alarmSink = sink
		}
	}

	// Wall-clock source for parameter-control audit timestamps, separate
	// from Acquisition's own internal session clock.
	paramClock := timebase.NewSession()

	src := acquisition.NewSimulatedSource(*maxSamples)
	if *gapEvery > 0 {
		src = src.WithGapEvery(*gapEvery)
	}

	ringCapacity := *ringSeconds * 160
	acqOpts := []acquisition.Option{acquisition.WithAuditSink(auditSink)}
	if alarmSink != nil {
		acqOpts = append(acqOpts, acquisition.WithAlarmSink(alarmSink))
	}
	acq := acquisition.New(src, 16, log, acqOpts...)
	dsp, err := acquisition.NewDSP(filterTable, paramCtrl, ringCapacity, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: building DSP chain: %v\n", err)
		os.Exit(1)
	}

	ui := dashboard.NewUI()

	// Local mirror of what's been pushed to the dashboard, so the copy
	// handler can format a plain-text diagnostics dump without the
	// dashboard package exposing its internal model state.
	var snapshot struct {
		channels [4]struct {
			LastAeeg   domain.AeegOutput
			HasAeeg    bool
			FrameCount int
		}
	}

	dsp.OnAeegOutput(func(ch int, out domain.AeegOutput) {
		ui.PushAeeg(ch, out)
		if ch >= 0 && ch < len(snapshot.channels) {
			snapshot.channels[ch].LastAeeg = out
			snapshot.channels[ch].HasAeeg = true
		}
	})
	dsp.OnGsFrame(func(ch int, frame domain.GsFrame) {
		ui.PushGsFrame(ch, frame)
		if ch >= 0 && ch < len(snapshot.channels) {
			snapshot.channels[ch].FrameCount++
		}
	})

	paramsView := func(s param.Settings) dashboard.ParamsView {
		return dashboard.ParamsView{
			GainUVPerCM: int(s.Gain),
			LPFCutoffHz: s.LPFCutoff,
			HPFCutoffHz: s.HPFCutoff,
			NotchOn:     s.NotchOn,
		}
	}

	cycleGain := func() {
		cur := paramCtrl.Current().Gain
		next := render.ValidGains[0]
		for i, g := range render.ValidGains {
			if g == cur {
				next = render.ValidGains[(i+1)%len(render.ValidGains)]
				break
			}
		}
		if err := paramCtrl.SetGain(ctx, next, paramClock.Now()); err != nil {
			log.Error("set gain: %v", err)
			return
		}
		ui.PushParams(paramsView(paramCtrl.Current()))
		ui.PushAuditLine(fmt.Sprintf("gain -> %duV/cm", next))
	}
	cycleLPF := func() {
		cur := paramCtrl.Current().LPFCutoff
		next := param.ValidLPFCutoffsHz[0]
		for i, hz := range param.ValidLPFCutoffsHz {
			if hz == cur {
				next = param.ValidLPFCutoffsHz[(i+1)%len(param.ValidLPFCutoffsHz)]
				break
			}
		}
		if err := paramCtrl.SetLPFCutoff(ctx, next, paramClock.Now()); err != nil {
			log.Error("set LPF cutoff: %v", err)
			return
		}
		ui.PushParams(paramsView(paramCtrl.Current()))
		ui.PushAuditLine(fmt.Sprintf("lpf -> %.1fHz", next))
	}
	cycleHPF := func() {
		cur := paramCtrl.Current().HPFCutoff
		next := param.ValidHPFCutoffsHz[0]
		for i, hz := range param.ValidHPFCutoffsHz {
			if hz == cur {
				next = param.ValidHPFCutoffsHz[(i+1)%len(param.ValidHPFCutoffsHz)]
				break
			}
		}
		if err := paramCtrl.SetHPFCutoff(ctx, next, paramClock.Now()); err != nil {
			log.Error("set HPF cutoff: %v", err)
			return
		}
		ui.PushParams(paramsView(paramCtrl.Current()))
		ui.PushAuditLine(fmt.Sprintf("hpf -> %.1fHz", next))
	}
	toggleNotch := func() {
		next := !paramCtrl.Current().NotchOn
		if err := paramCtrl.SetNotch(ctx, next, paramClock.Now()); err != nil {
			log.Error("set notch: %v", err)
			return
		}
		ui.PushParams(paramsView(paramCtrl.Current()))
		ui.PushAuditLine(fmt.Sprintf("notch -> %v", next))
	}
	copyDiagnostics := func() string {
		return dashboard.DiagnosticsSummary(snapshot.channels, paramsView(paramCtrl.Current()))
	}

	ui.OnGainCycle(cycleGain)
	ui.OnLPFCycle(cycleLPF)
	ui.OnHPFCycle(cycleHPF)
	ui.OnNotchToggle(toggleNotch)
	ui.OnCopyDiagnostics(func() string {
		text := copyDiagnostics()
		if err := clipboard.WriteAll(text); err != nil {
			log.Warn("clipboard: %v", err)
			ui.PushCopyStatus(fmt.Sprintf("clipboard unavailable: %v", err))
			return text
		}
		ui.PushCopyStatus(fmt.Sprintf("copied %d bytes to clipboard", len(text)))
		return text
	})

	// Acquisition publishes into the double buffer; DSP polls and drains
	// it. Both run in the background, matching the teacher's
	// background-goroutine-plus-blocking-UI shape in cmd/ottocook.
	go func() {
		if err := acq.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("acquisition: %v", err)
		}
	}()
	go func() {
		if err := dsp.Run(ctx, acq.Buffer(), 5*time.Millisecond); err != nil && ctx.Err() == nil {
			log.Error("dsp: %v", err)
		}
	}()

	go func() {
		ui.WaitReady()
		ui.PushParams(paramsView(paramCtrl.Current()))
		<-ctx.Done()
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		log.Error("dashboard: %v", err)
	}
	cancel()

	for _, ev := range auditSink.Events() {
		log.Debug("final audit trail: %s old=%q new=%q", ev.Kind, ev.Old, ev.New)
	}
}
