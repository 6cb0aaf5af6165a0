package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/tutor/internal/spacedrep"
)

// exportHeader is the row Export writes first; Import skips it.
var exportHeader = []any{"Question", "Answer", "Tags", "Bucket", "Next Review"}

// Export writes cards to an .xlsx file in the layout Import reads.
func Export(path string, cards []*spacedrep.Flashcard) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, c := range cards {
		row := []any{
			c.Question,
			c.Answer,
			strings.Join(c.Tags, ", "),
			c.Bucket,
			c.NextReview.Format("2006-01-02"),
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
