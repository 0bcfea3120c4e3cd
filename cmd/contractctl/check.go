package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"response-guard/internal/contract"
	"response-guard/pkg/registry"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var literal, handler, registryPath, data, dataFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare a JSON payload against a contract",
		Example: `  contractctl check --contract '{"id":0,"name":""}' --data '{"id":5}'
  contractctl check --registry configs/contracts.yaml --handler issues.get --data-file resp.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if literal == "" {
				if handler == "" {
					return fmt.Errorf("either --contract or --handler is required")
				}
				reg, err := registry.LoadRegistry(registryPath)
				if err != nil {
					return err
				}
				entry, ok := reg.Find(handler)
				if !ok {
					return fmt.Errorf("no contract for handler %s in %s", handler, registryPath)
				}
				if literal, err = entry.Literal(); err != nil {
					return err
				}
			}

			tmpl, ok := contract.Parse(literal)
			if !ok {
				return fmt.Errorf("contract is not a usable JSON literal: %s", literal)
			}

			raw, err := readPayload(cmd.InOrStdin(), data, dataFile)
			if err != nil {
				return err
			}
			var payload interface{}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("payload is not valid JSON: %w", err)
			}

			verdict := contract.Compare(tmpl, payload)
			out, _ := json.MarshalIndent(verdict, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !verdict.OK {
				return fmt.Errorf("contract check failed: %s", verdict.Diagnostic)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&literal, "contract", "", "Contract JSON literal")
	cmd.Flags().StringVar(&handler, "handler", "", "Handler id to look up in the registry")
	cmd.Flags().StringVar(&registryPath, "registry", defaultRegistryPath, "Path to the registry document")
	cmd.Flags().StringVar(&data, "data", "", "Payload JSON")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "File holding the payload JSON, - for stdin")
	return cmd
}

func readPayload(stdin io.Reader, data, dataFile string) ([]byte, error) {
	switch {
	case data != "":
		return []byte(data), nil
	case dataFile == "-":
		return io.ReadAll(stdin)
	case dataFile != "":
		return os.ReadFile(dataFile)
	}
	return nil, fmt.Errorf("either --data or --data-file is required")
}
