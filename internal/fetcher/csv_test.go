package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords_Basic(t *testing.T) {
	input := "navn,lon,lat\nHaslum skole,10.56,59.91\nBekkestua skole,10.58,59.92\n"
	recs, err := ReadRecords(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	name, ok := recs[0].Get("navn")
	assert.True(t, ok)
	assert.Equal(t, "Haslum skole", name)

	lon, _ := recs[1].Get("LON")
	assert.Equal(t, "10.58", lon)
}

func TestReadRecords_SemicolonDelimited(t *testing.T) {
	input := "navn;lon;lat\nA;1;2\n"
	recs, err := ReadRecords(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, Record{"navn": "A", "lon": "1", "lat": "2"}, recs[0])
}

func TestReadRecords_HeaderNormalised(t *testing.T) {
	input := "\uFEFF Navn , LON,Lat\n x , 1 ,2\n"
	recs, err := ReadRecords(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, Record{"navn": "x", "lon": "1", "lat": "2"}, recs[0])
}

func TestReadRecords_ShortAndLongRows(t *testing.T) {
	input := "a,b\n1\n1,2,3\n"
	recs, err := ReadRecords(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	_, ok := recs[0].Get("b")
	assert.False(t, ok)
	assert.Equal(t, Record{"a": "1", "b": "2"}, recs[1])
}

func TestReadRecords_Comments(t *testing.T) {
	input := "a,b\n# skipped\n1,2\n"
	recs, err := ReadRecords(context.Background(), strings.NewReader(input), CSVOptions{Comment: '#'})
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestReadRecords_Empty(t *testing.T) {
	recs, err := ReadRecords(context.Background(), strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadRecords_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadRecords(ctx, strings.NewReader("a\n1\n"), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestReadRecords_MalformedQuote(t *testing.T) {
	input := "a,b\n\"unterminated,2\n"
	_, err := ReadRecords(context.Background(), strings.NewReader(input), CSVOptions{})
	require.Error(t, err)
}
