package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangramlang/tangram/internal/types"
)

func TestDeclareConflict(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Declare(0, &Symbol{Name: "x", Type: types.Scalar(types.Int)}))
	err := tbl.Declare(0, &Symbol{Name: "x", Type: types.Scalar(types.Int)})
	require.Error(t, err)
}

func TestLookupThroughParents(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Declare(0, &Symbol{Name: "outer", Type: types.Scalar(types.Int)}))
	inner := tbl.Push(0)
	require.NoError(t, tbl.Declare(inner, &Symbol{Name: "innerVar", Type: types.Scalar(types.Bool)}))

	require.NotNil(t, tbl.Lookup(inner, "outer"))
	require.NotNil(t, tbl.Lookup(inner, "innerVar"))
	require.Nil(t, tbl.Lookup(0, "innerVar"))
}

func TestShadowingAllowedAcrossScopes(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Declare(0, &Symbol{Name: "x", Type: types.Scalar(types.Int)}))
	inner := tbl.Push(0)
	require.NoError(t, tbl.Declare(inner, &Symbol{Name: "x", Type: types.Scalar(types.String)}))

	sym := tbl.Lookup(inner, "x")
	require.Equal(t, types.String, sym.Type.ID)
}
