// Package benchmarks provides a scenario-timing harness for calibrating
// and regression-checking the simulation engine's tick throughput.
package benchmarks

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nova-forge/factorial-sim/engine"
)

// Scenario defines a single factory setup to run and measure.
type Scenario struct {
	// Name identifies the scenario.
	Name string

	// Description explains what the scenario exercises.
	Description string

	// Build constructs a fresh engine, already configured with its
	// commands submitted, ready to be stepped.
	Build func() *engine.Engine

	// Ticks is how many Step calls to run after Build returns.
	Ticks int
}

// Result holds the timing results for a single scenario run.
type Result struct {
	Name        string
	Description string

	Ticks     int
	FinalHash uint64
	FinalTick uint64

	WallTime time.Duration

	// Profile sums each tick's TickProfile phase durations across the
	// whole run, when profiling is enabled on the harness.
	Profile engine.TickProfile
}

// Config configures the benchmark harness.
type Config struct {
	// Profile enables per-phase timing on every constructed engine.
	Profile bool

	// Output is where PrintResults/PrintCSV write to (default: os.Stdout).
	Output io.Writer
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() Config {
	return Config{Profile: true}
}

// Harness runs a collection of Scenarios and reports their timing.
type Harness struct {
	config    Config
	scenarios []Scenario
}

// NewHarness creates a new benchmark harness.
func NewHarness(config Config) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{config: config}
}

// AddScenario adds one scenario to the harness.
func (h *Harness) AddScenario(s Scenario) {
	h.scenarios = append(h.scenarios, s)
}

// AddScenarios adds multiple scenarios to the harness.
func (h *Harness) AddScenarios(scenarios []Scenario) {
	h.scenarios = append(h.scenarios, scenarios...)
}

// RunAll executes every scenario and returns its results, in the order
// they were added.
func (h *Harness) RunAll() []Result {
	results := make([]Result, 0, len(h.scenarios))
	for _, s := range h.scenarios {
		results = append(results, h.run(s))
	}
	return results
}

func (h *Harness) run(s Scenario) Result {
	e := s.Build()

	var total engine.TickProfile
	start := time.Now()
	for i := 0; i < s.Ticks; i++ {
		e.Step()
		if h.config.Profile {
			p := e.Profile()
			total.PreTick += p.PreTick
			total.Transport += p.Transport
			total.Process += p.Process
			total.Module += p.Module
			total.PostTick += p.PostTick
			total.Bookkeeping += p.Bookkeeping
		}
	}
	wall := time.Since(start)

	return Result{
		Name:        s.Name,
		Description: s.Description,
		Ticks:       s.Ticks,
		FinalHash:   e.LastHash(),
		FinalTick:   e.Tick(),
		WallTime:    wall,
		Profile:     total,
	}
}

// PrintResults outputs scenario results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	fmt.Fprintln(h.config.Output, "=== Factory Scenario Benchmark Results ===")
	fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		fmt.Fprintf(h.config.Output, "Scenario: %s\n", r.Name)
		fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		fmt.Fprintf(h.config.Output, "  Ticks:        %d\n", r.Ticks)
		fmt.Fprintf(h.config.Output, "  Final tick:   %d\n", r.FinalTick)
		fmt.Fprintf(h.config.Output, "  Final hash:   %d\n", r.FinalHash)
		fmt.Fprintf(h.config.Output, "  Wall time:    %s\n", r.WallTime)
		if h.config.Profile {
			fmt.Fprintln(h.config.Output, "  --- Phase totals ---")
			fmt.Fprintf(h.config.Output, "  PreTick:      %s\n", r.Profile.PreTick)
			fmt.Fprintf(h.config.Output, "  Transport:    %s\n", r.Profile.Transport)
			fmt.Fprintf(h.config.Output, "  Process:      %s\n", r.Profile.Process)
			fmt.Fprintf(h.config.Output, "  Module:       %s\n", r.Profile.Module)
			fmt.Fprintf(h.config.Output, "  PostTick:     %s\n", r.Profile.PostTick)
			fmt.Fprintf(h.config.Output, "  Bookkeeping:  %s\n", r.Profile.Bookkeeping)
		}
		fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs scenario results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	fmt.Fprintln(h.config.Output, "name,ticks,final_tick,final_hash,wall_time_ns,pre_tick_ns,transport_ns,process_ns,module_ns,post_tick_ns,bookkeeping_ns")

	for _, r := range results {
		fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Ticks,
			r.FinalTick,
			r.FinalHash,
			r.WallTime.Nanoseconds(),
			r.Profile.PreTick.Nanoseconds(),
			r.Profile.Transport.Nanoseconds(),
			r.Profile.Process.Nanoseconds(),
			r.Profile.Module.Nanoseconds(),
			r.Profile.PostTick.Nanoseconds(),
			r.Profile.Bookkeeping.Nanoseconds(),
		)
	}
}
