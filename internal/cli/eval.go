package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verdict-eval/verdict/celpred"
	"github.com/verdict-eval/verdict/compiler"
	"github.com/verdict-eval/verdict/condition"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	ConditionsDir string
	Name          string
	VarsFile      string
}

// NewEvalCommand creates the eval command: load a condition document,
// evaluate one condition against a YAML variable file, and print the
// result plus the execution trail.
func NewEvalCommand(root *RootOptions) *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a condition against a set of variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConditionsDir, "conditions", "c", ".", "directory containing CUE condition documents")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "condition to evaluate (required)")
	cmd.Flags().StringVar(&opts.VarsFile, "vars", "", "YAML file with evaluation variables")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runEval(cmd *cobra.Command, root *RootOptions, opts *EvalOptions) error {
	vars, err := loadVars(opts.VarsFile)
	if err != nil {
		return err
	}

	nodes, err := loadConditions(opts.ConditionsDir, vars)
	if err != nil {
		return err
	}

	node, ok := nodes[opts.Name]
	if !ok {
		return fmt.Errorf("condition %q not found (have: %v)", opts.Name, sortedKeys(nodes))
	}

	ctx := condition.NewContext(vars)
	matched, evalErr := node.Matches(ctx)

	if err := renderResult(cmd.OutOrStdout(), root.Format, opts.Name, matched, evalErr, ctx.Log()); err != nil {
		return err
	}
	return evalErr
}

// loadConditions compiles the document directory with a CEL environment
// declaring every variable name, so expression leaves can reference them.
func loadConditions(dir string, vars map[string]any) (map[string]*condition.Node, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	env, err := celpred.NewEnv(names...)
	if err != nil {
		return nil, err
	}

	return compiler.Load(dir, compiler.Options{
		CELEnv: env,
		Executors: compiler.Executors{
			"default": condition.DefaultPool(),
		},
	})
}

// loadVars reads a YAML mapping of variable names to values.
// An empty path yields an empty variable set.
func loadVars(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vars file: %w", err)
	}
	vars := make(map[string]any)
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parse vars file %s: %w", path, err)
	}
	return vars, nil
}

func sortedKeys(m map[string]*condition.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
