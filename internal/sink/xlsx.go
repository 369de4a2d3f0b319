package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/civictriage/ticketsynth/internal/synth"
)

// XLSXSheet is the worksheet tickets are written to.
const XLSXSheet = "tickets"

// XLSXHeader is the first row of the sheet; keys match the JSONL field names.
var XLSXHeader = []interface{}{
	"ticket_id", "citizen_id_hash", "phone_hash", "submitted_at",
	"ward", "pincode", "lat", "lon",
	"category", "subcategory", "description", "photos",
	"priority_claimed", "language", "channel",
	"_label_will_escalate", "_label_priority_score",
}

// XLSX streams tickets into a single-sheet workbook saved on Close.
type XLSX struct {
	path string
	file *excelize.File
	sw   *excelize.StreamWriter
	row  int
}

func NewXLSX(path string) (*XLSX, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	sw, err := f.NewStreamWriter(XLSXSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", XLSXHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &XLSX{path: path, file: f, sw: sw, row: 1}, nil
}

func (x *XLSX) Write(_ context.Context, t *synth.Ticket) error {
	if x.row >= excelize.TotalRows {
		return fmt.Errorf("xlsx sheet is full at %d rows", excelize.TotalRows)
	}
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	return x.sw.SetRow(cell, []interface{}{
		t.TicketID, t.CitizenIDHash, t.PhoneHash, t.SubmittedAt,
		string(t.Location.Ward), t.Location.Pincode, t.Location.Lat, t.Location.Lon,
		string(t.Category), t.Subcategory, t.Description, strings.Join(t.Photos, " "),
		string(t.PriorityClaimed), string(t.Language), string(t.Channel),
		t.WillEscalate, t.PriorityScore,
	})
}

// Close flushes the stream and saves the workbook to path.
func (x *XLSX) Close() error {
	if err := x.sw.Flush(); err != nil {
		return errors.Join(err, x.file.Close())
	}
	if dir := filepath.Dir(x.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Join(err, x.file.Close())
		}
	}
	return errors.Join(x.file.SaveAs(x.path), x.file.Close())
}
