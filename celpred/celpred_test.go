package celpred_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-eval/verdict/celpred"
	"github.com/verdict-eval/verdict/condition"
)

func TestCompile_EvaluatesAgainstContextVariables(t *testing.T) {
	env, err := celpred.NewEnv("user", "score")
	require.NoError(t, err)

	pred, err := celpred.Compile(env, `user == "alice" && score > 10`)
	require.NoError(t, err)

	matched, err := pred(condition.NewContext(map[string]any{"user": "alice", "score": 42}))
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = pred(condition.NewContext(map[string]any{"user": "bob", "score": 42}))
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestCompile_RejectsUndeclaredVariables(t *testing.T) {
	env, err := celpred.NewEnv("score")
	require.NoError(t, err)

	_, err = celpred.Compile(env, "score > threshold")
	assert.Error(t, err, "references to undeclared names fail at compile time")
}

func TestCompile_SyntaxError(t *testing.T) {
	env, err := celpred.NewEnv()
	require.NoError(t, err)

	_, err = celpred.Compile(env, "((")
	assert.Error(t, err)
}

func TestCompile_NonBooleanResultIsNonMatch(t *testing.T) {
	env, err := celpred.NewEnv("score")
	require.NoError(t, err)

	pred, err := celpred.Compile(env, "score + 1")
	require.NoError(t, err)

	matched, err := pred(condition.NewContext(map[string]any{"score": 1}))
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestCompile_MissingVariableAtEvaluation(t *testing.T) {
	env, err := celpred.NewEnv("score")
	require.NoError(t, err)

	pred, err := celpred.Compile(env, "score > 10")
	require.NoError(t, err)

	_, err = pred(condition.NewContext(nil))
	assert.Error(t, err, "a declared but unbound variable fails at evaluation time")
}

func TestCompile_PredicateIsReusable(t *testing.T) {
	env, err := celpred.NewEnv("n")
	require.NoError(t, err)

	pred, err := celpred.Compile(env, "n % 2 == 0")
	require.NoError(t, err)

	node := condition.NewLeaf(pred)
	for _, tc := range []struct {
		n    int
		want bool
	}{{2, true}, {3, false}, {10, true}} {
		matched, err := node.Matches(condition.NewContext(map[string]any{"n": tc.n}))
		require.NoError(t, err)
		assert.Equal(t, tc.want, matched, "n=%d", tc.n)
	}
}
