// Command factorial-bench runs the factory simulation engine's timing
// benchmark harness.
//
// Usage:
//
//	go run ./cmd/factorial-bench [flags]
//
// Flags:
//
//	-csv   Output results in CSV format (default: human-readable)
//	-ticks Override the tick count every scenario runs for
//
// Example:
//
//	# Run every scenario with human-readable output
//	go run ./cmd/factorial-bench
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/factorial-bench -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nova-forge/factorial-sim/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	ticks := flag.Int("ticks", 0, "Override the tick count every scenario runs for (0 keeps each scenario's own default)")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	scenarios := benchmarks.GetMicroScenarios()
	if *ticks > 0 {
		for i := range scenarios {
			scenarios[i].Ticks = *ticks
		}
	}
	harness.AddScenarios(scenarios)

	if !*csvOutput {
		fmt.Println("Factorial-Sim Scenario Benchmark Harness")
		fmt.Println("=========================================")
		fmt.Println("")
	}

	results := harness.RunAll()

	if *csvOutput {
		harness.PrintCSV(results)
	} else {
		harness.PrintResults(results)
	}
}
