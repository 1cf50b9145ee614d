// Package boot implements the bootstrap loader: it resolves the dashboard
// script shipped next to the entry point, executes it in-process with the
// yaegi interpreter, and turns any failure into a typed result the
// dashboard renders instead of crashing the daemon.
package boot

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/hashmap-kz/quantd/internal/metrics"
)

type State string

const (
	StateLoading State = "loading"
	StateRunning State = "running"
	StateFailed  State = "failed"
)

// Result is the outcome of one load attempt. A failed load carries the
// original error message and a stack trace of the failure point; the
// caller decides how to surface it.
type Result struct {
	State    State     `json:"state"`
	Script   string    `json:"script,omitempty"`
	Output   string    `json:"output,omitempty"`
	Error    string    `json:"error,omitempty"`
	Trace    string    `json:"trace,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`

	// Err is the underlying error for programmatic checks; Error carries
	// its message on the wire.
	Err error `json:"-"`
}

type Loader struct {
	l         *slog.Logger
	entryDir  string
	scriptDir string
	paths     *SearchPaths
	exports   interp.Exports

	mu     sync.RWMutex
	last   Result
	render func() string
}

type LoaderOpts struct {
	// EntryFile is the daemon's entry point; the script directory is
	// derived from its location. Defaults to the running executable.
	EntryFile string
	// Exports is the host API made visible to loaded scripts.
	Exports interp.Exports
}

func NewLoader(opts *LoaderOpts) (*Loader, error) {
	if opts == nil {
		opts = &LoaderOpts{}
	}
	entryFile := opts.EntryFile
	if entryFile == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve entry file: %w", err)
		}
		entryFile = exe
	}

	entryDir, scriptDir := ResolvePaths(entryFile)
	paths := NewSearchPaths()
	paths.Register(entryDir, scriptDir)

	return &Loader{
		l:         slog.With(slog.String("component", "boot-loader")),
		entryDir:  entryDir,
		scriptDir: scriptDir,
		paths:     paths,
		exports:   opts.Exports,
		last:      Result{State: StateLoading},
	}, nil
}

func (ld *Loader) log() *slog.Logger {
	if ld.l != nil {
		return ld.l
	}
	return slog.With(slog.String("component", "boot-loader"))
}

// Paths returns the script search paths, in resolution order.
func (ld *Loader) Paths() []string { return ld.paths.Dirs() }

// ScriptPath returns the derived script location.
func (ld *Loader) ScriptPath() string {
	if p, ok := ld.paths.Resolve(ScriptFile); ok {
		return p
	}
	return filepath.Join(ld.scriptDir, ScriptFile)
}

// Status returns the result of the most recent load attempt.
func (ld *Loader) Status() Result {
	ld.mu.RLock()
	defer ld.mu.RUnlock()
	return ld.last
}

// Render invokes the script's Render hook, if the last load installed one.
func (ld *Loader) Render() (string, bool) {
	ld.mu.RLock()
	fn := ld.render
	ld.mu.RUnlock()
	if fn == nil {
		return "", false
	}
	return fn(), true
}

// Load runs one load attempt: read the script, execute it in a fresh
// interpreter, capture its output and hooks. Every failure mode ends in
// StateFailed with message and trace; nothing propagates to the caller
// as an error and the process keeps running.
func (ld *Loader) Load() Result {
	metrics.LoaderRuns.Inc()

	ld.mu.Lock()
	ld.last = Result{State: StateLoading, Script: ld.ScriptPath()}
	ld.render = nil
	ld.mu.Unlock()

	res, render := ld.run()

	ld.mu.Lock()
	ld.last = res
	ld.render = render
	ld.mu.Unlock()

	if res.State == StateFailed {
		metrics.LoaderFailures.Inc()
		ld.log().Error("dashboard script load failed",
			slog.String("script", res.Script),
			slog.Any("err", res.Err),
		)
	} else {
		ld.log().Info("dashboard script loaded", slog.String("script", res.Script))
	}
	return res
}

func (ld *Loader) run() (Result, func() string) {
	script := ld.ScriptPath()
	res := Result{State: StateRunning, Script: script, LoadedAt: time.Now()}

	src, err := os.ReadFile(script)
	if err != nil {
		return failure(res, fmt.Errorf("read dashboard script: %w", err), ""), nil
	}
	if !utf8.Valid(src) {
		return failure(res, fmt.Errorf("dashboard script %s is not valid utf-8", script), ""), nil
	}

	var out bytes.Buffer
	i := interp.New(interp.Options{Stdout: &out, Stderr: &out})
	if err := i.Use(stdlib.Symbols); err != nil {
		return failure(res, fmt.Errorf("load interpreter stdlib: %w", err), ""), nil
	}
	if ld.exports != nil {
		if err := i.Use(ld.exports); err != nil {
			return failure(res, fmt.Errorf("load host api: %w", err), ""), nil
		}
	}

	render, trace, err := evalScript(i, string(src))
	res.Output = out.String()
	if err != nil {
		return failure(res, err, trace), nil
	}
	return res, render
}

// evalScript evaluates the source and invokes its main exactly once.
// Panics inside the script are captured with a stack trace of the
// failure point instead of unwinding into the host.
func evalScript(i *interp.Interpreter, src string) (render func() string, trace string, err error) {
	defer func() {
		if r := recover(); r != nil {
			render = nil
			if p, ok := r.(interp.Panic); ok {
				err = fmt.Errorf("script panic: %v", p.Value)
				trace = string(p.Stack)
				return
			}
			err = fmt.Errorf("script panic: %v", r)
			trace = string(debug.Stack())
		}
	}()

	if _, err := i.Eval(src); err != nil {
		var p interp.Panic
		if errors.As(err, &p) {
			return nil, string(p.Stack), fmt.Errorf("script panic: %v", p.Value)
		}
		return nil, "", fmt.Errorf("evaluate script: %w", err)
	}

	if v, mainErr := i.Eval("main.main"); mainErr == nil {
		if fn, ok := v.Interface().(func()); ok {
			fn()
		}
	}

	if v, renderErr := i.Eval("main.Render"); renderErr == nil {
		if fn, ok := v.Interface().(func() string); ok {
			render = fn
		}
	}
	return render, "", nil
}

func failure(res Result, err error, trace string) Result {
	res.State = StateFailed
	res.Err = err
	res.Error = err.Error()
	if trace == "" {
		trace = string(debug.Stack())
	}
	res.Trace = trace
	return res
}
