package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdict-eval/verdict/celpred"
	"github.com/verdict-eval/verdict/compiler"
	"github.com/verdict-eval/verdict/condition"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	ConditionsDir string
	Variables     []string
}

// NewValidateCommand creates the validate command: compile a condition
// document without evaluating anything, reporting the first error.
func NewValidateCommand(root *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compile condition documents without evaluating them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConditionsDir, "conditions", "c", ".", "directory containing CUE condition documents")
	cmd.Flags().StringSliceVar(&opts.Variables, "declare", nil, "variable names expression leaves may reference")

	return cmd
}

func runValidate(cmd *cobra.Command, root *RootOptions, opts *ValidateOptions) error {
	env, err := celpred.NewEnv(opts.Variables...)
	if err != nil {
		return err
	}

	nodes, err := compiler.Load(opts.ConditionsDir, compiler.Options{
		CELEnv: env,
		Executors: compiler.Executors{
			"default": condition.DefaultPool(),
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d condition(s) compiled\n", len(nodes))
	return nil
}
