package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"response-guard/internal/contract"

	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file...]",
		Short: "List contracts declared in source files",
		Long:  `Scans files line by line for the contract tag and reports each literal and whether it parses.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, _ := cmd.Flags().GetString("tag")
			extractor := contract.NewExtractor(tag)
			out := cmd.OutOrStdout()

			invalid := 0
			for _, pattern := range args {
				matches, err := filepath.Glob(pattern)
				if err != nil {
					return fmt.Errorf("bad pattern %s: %w", pattern, err)
				}
				if len(matches) == 0 {
					matches = []string{pattern}
				}

				for _, path := range matches {
					n, err := extractFile(path, extractor, func(line int, literal string, ok bool) {
						status := "ok"
						if !ok {
							status = "unusable"
						}
						fmt.Fprintf(out, "%s:%d\t%s\t%s\n", path, line, status, literal)
					})
					if err != nil {
						return err
					}
					invalid += n
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d contract(s) do not parse", invalid)
			}
			return nil
		},
	}
}

// extractFile reports every tagged line of path and returns how many
// literals failed to parse.
func extractFile(path string, extractor *contract.Extractor, report func(line int, literal string, ok bool)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	invalid := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		literal, found := extractor.Extract(scanner.Text())
		if !found {
			continue
		}
		// a raw string constant closes on the tag line
		literal = strings.TrimSpace(strings.TrimSuffix(literal, "`"))
		_, ok := contract.Parse(literal)
		if !ok {
			invalid++
		}
		report(line, literal, ok)
	}
	return invalid, scanner.Err()
}
