package dataeng

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2025-06-02,100.5,102.0,99.8,101.2,1200000
2025-06-03,101.2,103.5,101.0,103.0,1500000
2025-06-04,103.0,103.1,100.2,100.9,900000
`

func TestParseCandlesCSV(t *testing.T) {
	bars, err := parseCandlesCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, 100.5, bars[0].Open)
	assert.Equal(t, 101.2, bars[0].Close)
	assert.Equal(t, 1200000.0, bars[0].Volume)
	assert.Equal(t, "2025-06-04", bars[2].Time.Format("2006-01-02"))
}

func TestParseCandlesCSVSkipsBadRows(t *testing.T) {
	csv := "Date,Open,High,Low,Close,Volume\n" +
		"not-a-date,1,2,3,4,5\n" +
		"2025-06-02,abc,2,3,4,5\n" +
		"2025-06-03,1,2,3,4,5\n"
	bars, err := parseCandlesCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 4.0, bars[0].Close)
}

func TestParseCandlesCSVNoRows(t *testing.T) {
	_, err := parseCandlesCSV(strings.NewReader("Date,Open,High,Low,Close,Volume\n"))
	assert.Error(t, err)

	// stooq answers "No data" for unknown tickers
	_, err = parseCandlesCSV(strings.NewReader("No data\n"))
	assert.Error(t, err)
}
