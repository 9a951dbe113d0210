package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tblx/internal/orderby"
)

func TestOrderFlag(t *testing.T) {
	var f orderFlag
	assert.Equal(t, "order", f.Type())
	assert.Equal(t, orderby.Spec{}, f.Spec())

	require.NoError(t, f.Set("age, -name ,score:desc"))
	assert.Equal(t, "age:asc,name:desc,score:desc", f.String())

	err := f.Set("age:up")
	assert.ErrorIs(t, err, orderby.ErrMalformedOrderBy)
	assert.Equal(t, "age:asc,name:desc,score:desc", f.String(), "failed Set keeps the previous value")

	var nilFlag *orderFlag
	assert.Empty(t, nilFlag.String())
}
