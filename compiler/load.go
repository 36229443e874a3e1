package compiler

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/verdict-eval/verdict/condition"
)

// Load reads the CUE package in dir and compiles every entry declared
// under the top-level "condition" struct.
//
// Each entry's label becomes the node's alias unless the document sets one
// explicitly. The returned map is keyed by label.
func Load(dir string, opts Options) (map[string]*condition.Node, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("conditions directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("access conditions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	cuectx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("load CUE files: %w", inst.Err)
	}

	value := cuectx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("build CUE value: %w", err)
	}

	return CompileAll(value, opts)
}

// CompileAll compiles every condition declared under value's top-level
// "condition" struct.
func CompileAll(value cue.Value, opts Options) (map[string]*condition.Node, error) {
	conditionsVal := value.LookupPath(cue.ParsePath("condition"))
	if !conditionsVal.Exists() {
		return nil, fmt.Errorf("no top-level \"condition\" declarations found")
	}

	iter, err := conditionsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}

	nodes := make(map[string]*condition.Node)
	for iter.Next() {
		label := strings.Trim(iter.Selector().String(), `"`)
		node, err := Compile(iter.Value(), opts)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", label, err)
		}
		if node.Attributes().Alias == "" {
			node = node.WithAlias(label)
		}
		nodes[label] = node
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no conditions declared")
	}

	return nodes, nil
}
