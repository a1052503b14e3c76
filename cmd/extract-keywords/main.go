// Command extract-keywords fills the Keywords column of a question sheet
// and writes the result as CSV.
//
//	extract-keywords -in questions.xlsx -out questions_with_keywords.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anatomyace/anatomy-ace/internal/loader"
	"github.com/anatomyace/anatomy-ace/internal/logger"
	"github.com/anatomyace/anatomy-ace/internal/scoring"
)

func main() {
	inPath := flag.String("in", "", "question sheet (.csv, .xlsx, .json, .yaml)")
	outPath := flag.String("out", "", "output CSV path (default stdout)")
	regenerate := flag.Bool("regenerate", false, "overwrite keywords already present in the sheet")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logger.Setup(*logLevel, "pretty")

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	questions, err := loader.Load(*inPath, loader.DefaultOptions)
	if err != nil {
		log.Fatal().Err(err).Str("path", *inPath).Msg("Failed to load question sheet")
	}

	generated := 0
	for i := range questions {
		q := &questions[i]
		if *regenerate || strings.TrimSpace(q.Keywords) == "" {
			q.Keywords = scoring.ExtractKeywords(q.Answer, q.Type)
			generated++
		}
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := loader.WriteCSV(out, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to write keywords")
	}

	log.Info().
		Int("questions", len(questions)).
		Int("keywords_generated", generated).
		Msg("Keyword extraction complete")
	if *outPath != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", *outPath)
	}
}
