package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-eval/verdict/celpred"
	"github.com/verdict-eval/verdict/compiler"
	"github.com/verdict-eval/verdict/condition"
)

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conditions.cue"), []byte(doc), 0o644))
	return dir
}

func TestLoad_CompilesDirectory(t *testing.T) {
	dir := writeDoc(t, `
condition: deploy_ready: {
	op: "and"
	children: [
		{op: "leaf", expr: "replicas >= 2"},
		{op: "not", child: {op: "leaf", expr: "maintenance"}},
	]
}
`)

	env, err := celpred.NewEnv("replicas", "maintenance")
	require.NoError(t, err)

	nodes, err := compiler.Load(dir, compiler.Options{CELEnv: env})
	require.NoError(t, err)
	require.Contains(t, nodes, "deploy_ready")

	ctx := condition.NewContext(map[string]any{"replicas": 3, "maintenance": false})
	matched, err := nodes["deploy_ready"].Matches(ctx)
	require.NoError(t, err)
	assert.True(t, matched)

	ctx = condition.NewContext(map[string]any{"replicas": 3, "maintenance": true})
	matched, err = nodes["deploy_ready"].Matches(ctx)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := compiler.Load(filepath.Join(t.TempDir(), "nope"), compiler.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := compiler.Load(file, compiler.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
