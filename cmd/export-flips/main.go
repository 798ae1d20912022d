package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"osrs-flipper/internal/config"
	"osrs-flipper/internal/database"
	"osrs-flipper/internal/models"
)

// export-flips dumps a user's flip history to a spreadsheet for offline
// analysis.
func main() {
	user := flag.String("user", "", "account display name to export")
	dsn := flag.String("dsn", "", "MySQL DSN (defaults to DATABASE_URL)")
	out := flag.String("out", "flips.xlsx", "output file path")
	closedOnly := flag.Bool("closed-only", false, "export only closed flips")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: export-flips -user <display name> [-dsn ...] [-out flips.xlsx]")
		os.Exit(2)
	}
	if *dsn == "" {
		*dsn = config.Load().DatabaseURL
	}

	db, err := database.Initialize(*dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}

	flips, err := database.NewFlipStore(db).UserFlips(*user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load flips: %v\n", err)
		os.Exit(1)
	}

	written, err := writeWorkbook(*out, flips, *closedOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write workbook: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d flips to %s\n", written, *out)
}

func writeWorkbook(path string, flips []models.Flip, closedOnly bool) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Flips"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Item ID", "Item", "Opened", "Closed", "Bought", "Sold",
		"Spent", "Received (post tax)", "Tax", "Profit", "Status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, flip := range flips {
		if closedOnly && !flip.IsClosed {
			continue
		}
		status := "open"
		if flip.IsClosed {
			status = "closed"
		}
		values := []interface{}{
			flip.ItemID, flip.ItemName,
			formatUnix(flip.OpenedTime), formatUnix(flip.ClosedTime),
			flip.OpenedQuantity, flip.ClosedQuantity,
			flip.Spent, flip.ReceivedPostTax, flip.TaxPaid, flip.Profit,
			status,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	return row - 2, f.SaveAs(path)
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
}
