// Command guardcheck is a static analysis tool that checks guarded
// container types are wired to the detector: it flags every exported
// method on a struct carrying a guard.Shadow field whose body contains no
// call into the guard package. It does not check which guard is called,
// whether the call comes before the method touches the struct's fields, or
// whether the method touches those fields at all. It does not rewrite source (unlike
// the compile-time instrumentation pass this tool's AST-walking is modeled
// on); it only reports mismatches.
//
// Usage:
//
//	guardcheck ./...
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	patterns := os.Args[1:]
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	findings, err := Check(patterns)
	if err != nil {
		log.Error().Err(err).Msg("guardcheck failed to load packages")
		os.Exit(2)
	}

	for _, f := range findings {
		fmt.Fprintln(os.Stderr, f.String())
	}
	if len(findings) > 0 {
		log.Warn().Int("count", len(findings)).Msg("unguarded accesses found")
		os.Exit(1)
	}
	log.Info().Msg("no unguarded accesses found")
}
