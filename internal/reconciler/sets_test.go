package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turahe/kuha-go/internal/provider"
)

func TestWithSynthesizedAncestorsAddsMissingParents(t *testing.T) {
	in := []provider.SetDef{{Spec: "a:b:c", Name: "Leaf"}}
	out := withSynthesizedAncestors(in)

	specs := make(map[string]bool, len(out))
	for _, def := range out {
		specs[def.Spec] = true
	}

	assert.True(t, specs["a"])
	assert.True(t, specs["a:b"])
	assert.True(t, specs["a:b:c"])
	assert.Len(t, out, 3)
}

func TestWithSynthesizedAncestorsLeavesCompleteHierarchyAlone(t *testing.T) {
	in := []provider.SetDef{
		{Spec: "a", Name: "A"},
		{Spec: "a:b", Name: "B"},
	}
	out := withSynthesizedAncestors(in)
	assert.Len(t, out, 2)
}
