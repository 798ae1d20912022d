package main

import (
	"path/filepath"
	"testing"

	"osrs-flipper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	flips := []models.Flip{
		{
			ItemID: 2, ItemName: "Cannonball",
			OpenedTime: 1_700_000_000, ClosedTime: 1_700_010_000,
			OpenedQuantity: 100, ClosedQuantity: 100,
			Spent: 16_000, ReceivedPostTax: 16_500, TaxPaid: 300,
			Profit: 500, IsClosed: true,
		},
		{
			ItemID: 561, ItemName: "Nature rune",
			OpenedTime:     1_700_020_000,
			OpenedQuantity: 50, Spent: 5_000,
		},
	}

	path := filepath.Join(t.TempDir(), "flips.xlsx")
	written, err := writeWorkbook(path, flips, false)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Flips")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 flips

	assert.Equal(t, "Item ID", rows[0][0])
	assert.Equal(t, "Cannonball", rows[1][1])
	assert.Equal(t, "500", rows[1][9])
	assert.Equal(t, "closed", rows[1][10])
	assert.Equal(t, "open", rows[2][10])
	assert.Empty(t, rows[2][3]) // open flip has no closed time
}

func TestWriteWorkbookClosedOnly(t *testing.T) {
	flips := []models.Flip{
		{ItemID: 2, ItemName: "Cannonball", IsClosed: true, OpenedQuantity: 1, ClosedQuantity: 1},
		{ItemID: 561, ItemName: "Nature rune"},
	}

	path := filepath.Join(t.TempDir(), "flips.xlsx")
	written, err := writeWorkbook(path, flips, true)
	require.NoError(t, err)
	// The reported count reflects what was written, not what was loaded.
	assert.Equal(t, 1, written)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Flips")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cannonball", rows[1][1])
}
