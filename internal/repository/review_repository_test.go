package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatsOrDefault(t *testing.T) {
	// {4,5,3} -> quantity 3, average 4.0
	n, avg := statsOrDefault(3, sql.NullFloat64{Float64: 4.0, Valid: true})
	require.Equal(t, 3, n)
	require.Equal(t, 4.0, avg)

	// average rounds to one decimal
	n, avg = statsOrDefault(3, sql.NullFloat64{Float64: 4.333333, Valid: true})
	require.Equal(t, 3, n)
	require.Equal(t, 4.3, avg)

	n, avg = statsOrDefault(2, sql.NullFloat64{Float64: 4.45, Valid: true})
	require.Equal(t, 2, n)
	require.Equal(t, 4.5, avg)

	// no reviews fall back to the schema defaults
	n, avg = statsOrDefault(0, sql.NullFloat64{})
	require.Equal(t, 0, n)
	require.Equal(t, 4.5, avg)
}
