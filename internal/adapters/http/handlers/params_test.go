package handlers

import (
	"testing"
	"time"

	"aidtrust/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("", "startDate", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDate("2024-03-05", "startDate", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseDate("2024-03-05", "endDate", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC), *got)

	got, err = parseDate("2024-03-05T10:30:00+05:00", "endDate", true)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 5, 5, 30, 0, 0, time.UTC)))

	_, err = parseDate("05/03/2024", "startDate", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "startDate")
}
