package sink

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/civictriage/ticketsynth/internal/testutil"
)

func TestXLSXSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "tickets.xlsx")
	tickets := testutil.Tickets(t, 4, 21)

	w, err := NewXLSX(path)
	require.NoError(t, err)
	writeAll(t, w, tickets)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(XLSXSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "ticket_id", rows[0][0])
	assert.Equal(t, "_label_priority_score", rows[0][len(XLSXHeader)-1])
	for i, tk := range tickets {
		assert.Equal(t, tk.TicketID, rows[i+1][0])
		assert.Equal(t, string(tk.Location.Ward), rows[i+1][4])
		assert.Equal(t, string(tk.Category), rows[i+1][8])
	}
}
