// cmd/contractctl/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultRegistryPath = "configs/contracts.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "contractctl",
		Short:        "Inspect and maintain response contracts",
		Long:         `contractctl checks payloads against response contracts, extracts contracts from handler docs and maintains the contract registry document.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("tag", "@require_type", "Annotation tag that introduces a contract")

	root.AddCommand(
		newCheckCmd(),
		newExtractCmd(),
		newLintCmd(),
		newAddCmd(),
		newListCmd(),
	)
	return root
}
