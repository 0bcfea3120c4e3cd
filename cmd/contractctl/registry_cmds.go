package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/contract"
	"response-guard/pkg/registry"

	"github.com/spf13/cobra"
)

func newLintCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate the registry document and every contract in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			unusable := 0
			for _, e := range reg.Contracts {
				literal, err := e.Literal()
				if err == nil {
					if _, ok := contract.Parse(literal); !ok {
						err = fmt.Errorf("not a usable JSON literal")
					}
				}
				if err != nil {
					unusable++
					fmt.Fprintf(out, "FAIL\t%s\t%v\n", e.Handler, err)
					continue
				}
				fmt.Fprintf(out, "ok\t%s\n", e.Handler)
			}

			if unusable > 0 {
				return fmt.Errorf("%d of %d contracts unusable", unusable, len(reg.Contracts))
			}
			fmt.Fprintf(out, "Registry validation passed (%d contracts).\n", len(reg.Contracts))
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", defaultRegistryPath, "Path to the registry document")
	return cmd
}

func newAddCmd() *cobra.Command {
	var registryPath, handler, literal, description string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contract to the registry document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if handler == "" || literal == "" {
				return fmt.Errorf("--handler and --contract are required")
			}
			if _, ok := contract.Parse(literal); !ok {
				return fmt.Errorf("contract is not a usable JSON literal: %s", literal)
			}
			var value interface{}
			if err := json.Unmarshal([]byte(literal), &value); err != nil {
				return err
			}

			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				var stdErr *apperrors.StandardError
				if !errors.As(err, &stdErr) || stdErr.Code != apperrors.ErrCodeRegistryNotFound {
					return describe(err)
				}
				reg = registry.NewContractRegistry()
			}

			if err := reg.Add(registry.ContractEntry{
				Handler:     handler,
				Description: description,
				Contract:    value,
				Tags:        tags,
			}); err != nil {
				return err
			}
			if err := registry.SaveRegistry(reg, registryPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added contract: %s\n", handler)
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", defaultRegistryPath, "Path to the registry document")
	cmd.Flags().StringVar(&handler, "handler", "", "Handler id (e.g. issues.get)")
	cmd.Flags().StringVar(&literal, "contract", "", "Contract JSON literal")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma separated tags")
	return cmd
}

func newListCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the contracts in the registry document",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return describe(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HANDLER\tTAGS\tCONTRACT")
			for _, e := range reg.Contracts {
				literal, _ := e.Literal()
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Handler, strings.Join(e.Tags, ","), literal)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", defaultRegistryPath, "Path to the registry document")
	return cmd
}

// describe adds the details of a registry error to its message.
func describe(err error) error {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Details != "" {
		return fmt.Errorf("%s: %s: %w", stdErr.Message, stdErr.Details, err)
	}
	return err
}
