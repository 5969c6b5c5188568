package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaged(t *testing.T) {
	require.False(t, Pagination{}.Paged())
	require.True(t, Pagination{Page: 1}.Paged())
}

func TestNormalize(t *testing.T) {
	require.Equal(t, 20, Pagination{}.Normalize())
	require.Equal(t, 50, Pagination{Limit: 50}.Normalize())
	require.Equal(t, 250, Pagination{Limit: 9999}.Normalize())
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, Pagination{Page: 1, Limit: 25}.Offset())
	require.Equal(t, 25, Pagination{Page: 2, Limit: 25}.Offset())
	require.Equal(t, 40, Pagination{Page: 3}.Offset())
}

func TestNewEnvelopeNeverNil(t *testing.T) {
	env := NewEnvelope[string](nil, 0, Pagination{Page: 1})
	require.NotNil(t, env.Items)
	require.Empty(t, env.Items)
	require.Equal(t, 20, env.Limit)
}
