package models

import (
	"testing"

	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitBundleConsumedOnce(t *testing.T) {
	b := NewCommitBundle(4, "fix labels", Edit{Kind: EditAddAxiom, Content: "A"})

	assert.False(t, b.Consumed())
	require.NoError(t, b.Consume())
	assert.True(t, b.Consumed())
	assert.ErrorIs(t, b.Consume(), constants.ErrBundleConsumed)
}

func TestEditRequiredOperation(t *testing.T) {
	op, ok := Edit{Kind: EditRemoveImport}.RequiredOperation()
	assert.True(t, ok)
	assert.Equal(t, OpRemoveImport, op)

	_, ok = Edit{Kind: "rename-class"}.RequiredOperation()
	assert.False(t, ok)
}

func TestCatalogIsACopy(t *testing.T) {
	ops := Catalog()
	require.NotEmpty(t, ops)
	ops[0].Name = "mutated"

	op, ok := LookupOperation(OpAddAxiom)
	require.True(t, ok)
	assert.Equal(t, "Add axiom", op.Name)
}
