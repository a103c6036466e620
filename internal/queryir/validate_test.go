package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_SimpleLeaf(t *testing.T) {
	result := Validate(Eq("rating", "safe"))

	assert.Equal(t, 1, result.Leaves)
	assert.False(t, result.Empty())
	assert.Empty(t, result.Warnings)
}

func TestValidate_NestedGroups(t *testing.T) {
	tree := And(
		Eq("rating", "safe"),
		Or(
			Cond("title", "LOWER", "dash"),
			FlatMap{"score": {Operator: ">", Value: 10}, "views": {Value: 3}},
		),
	)

	result := Validate(tree)

	assert.Equal(t, 4, result.Leaves)
	assert.Empty(t, result.Warnings)
}

func TestValidate_EmptyTrees(t *testing.T) {
	testCases := []struct {
		name string
		node Node
	}{
		{"nil node", nil},
		{"empty group", Group{}},
		{"group of empty groups", And(Or(), And())},
		{"empty flat map", FlatMap{}},
		{"leaf without column", Leaf{Value: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.node)
			assert.True(t, result.Empty(), "expected no leaves")
			assert.NotEmpty(t, result.Warnings)
		})
	}
}

func TestValidate_UnknownLogic(t *testing.T) {
	result := Validate(Group{Logic: "XOR", Children: []Node{Eq("a", 1)}})

	assert.Equal(t, 1, result.Leaves)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "treated as AND")
}

func TestValidate_FlatMapColumnMismatch(t *testing.T) {
	result := Validate(FlatMap{"score": {Column: "views", Value: 1}})

	assert.Equal(t, 1, result.Leaves)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "ignored in favour of the key")
}

func TestValidate_PointerNodes(t *testing.T) {
	leaf := Eq("id", 7)
	group := And(&leaf)

	result := Validate(&group)

	assert.Equal(t, 1, result.Leaves)
	assert.Empty(t, result.Warnings)
}
