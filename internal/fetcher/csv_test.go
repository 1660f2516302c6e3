package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) [][]string {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		require.NoError(t, err)
	}
	return rows
}

func TestStreamCSV_Basic(t *testing.T) {
	input := "c1,Year-End Drive,50000\nc2,Spring Gala,25000\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"c1", "Year-End Drive", "50000"}, rows[0])
	assert.Equal(t, []string{"c2", "Spring Gala", "25000"}, rows[1])
}

func TestStreamCSV_HeaderRow(t *testing.T) {
	input := "id,name,goal\nc1,Gala,1000\n"
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"c1", "Gala", "1000"}, rows[0])
	assert.Equal(t, []string{"id", "name", "goal"}, <-headerCh)
}

func TestStreamCSV_HeaderSkippedWithoutChannel(t *testing.T) {
	input := "id,name\nc1,Gala\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{HasHeader: true})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"c1", "Gala"}, rows[0])
}

func TestStreamCSV_Delimiter(t *testing.T) {
	input := "c1;Gala;1000\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: ';'})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"c1", "Gala", "1000"}, rows[0])
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " c1 , Gala , 1000 \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"c1", "Gala", "1000"}, rows[0])
}

func TestStreamCSV_VariableFieldCounts(t *testing.T) {
	// Exports sometimes omit trailing optional columns.
	input := "c1,Gala,1000,120\nc2,Walkathon,500\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 4)
	assert.Len(t, rows[1], 3)
}

func TestStreamCSV_MalformedQuote(t *testing.T) {
	input := "c1,\"unterminated\nc2,ok\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})

	for range rowCh { //nolint:revive // drain
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\nc,d\n"), CSVOptions{})
	for range rowCh { //nolint:revive // drain
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
