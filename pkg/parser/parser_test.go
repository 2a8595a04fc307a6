package parser

import (
	"testing"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNew(t *testing.T) {
	o, err := Parse("N, 1, IBM, 10, 100, B, 1")
	require.NoError(t, err)
	assert.Equal(t, orderbook.NEW, o.Kind)
	assert.EqualValues(t, 1, o.UserID)
	assert.Equal(t, "IBM", o.Symbol)
	assert.EqualValues(t, 10, o.Price)
	assert.EqualValues(t, 100, o.Qty)
	assert.Equal(t, orderbook.BUY, o.Side)
	assert.EqualValues(t, 1, o.ID)

	o, err = Parse("N,2,VAL,0,50,S,102\n")
	require.NoError(t, err)
	assert.True(t, o.IsMarket())
	assert.Equal(t, orderbook.SELL, o.Side)
}

func TestParseCancelAndFlush(t *testing.T) {
	o, err := Parse("C,1,3")
	require.NoError(t, err)
	assert.Equal(t, orderbook.CANCEL, o.Kind)
	assert.EqualValues(t, 1, o.UserID)
	assert.EqualValues(t, 3, o.ID)

	o, err = Parse("F")
	require.NoError(t, err)
	assert.Equal(t, orderbook.FLUSH, o.Kind)
}

func TestParseInvalid(t *testing.T) {
	for _, line := range []string{
		"",
		"X,1,2",
		"NN,1,IBM,10,100,B,1",
		"#scenario 1",
		"N,1,IBM,10,100,B",
		"N,1,IBM,10,100,X,1",
		"N,1,IBM,-1,100,B,1",
		"N,1,IBM,10,0,B,1",
		"N,a,IBM,10,100,B,1",
		"N,1,,10,100,B,1",
		"C,1",
		"C,1,x",
		"F,1",
	} {
		o, err := Parse(line)
		assert.ErrorIs(t, err, ErrInvalidLine, "line %q", line)
		assert.Nil(t, o, "line %q", line)
	}
}
