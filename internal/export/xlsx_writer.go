package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"publicpulse/internal/domain"
)

const sheetName = "Submissions"

// columns defines the report header row.
var columns = []string{
	"Submission ID",
	"Document Type",
	"Status",
	"Review Status",
	"Full Name",
	"ID Number",
	"Date of Birth",
	"Gender",
	"Email",
	"Village",
	"Parish",
	"Subcounty",
	"County",
	"District",
	"Expiry Date",
	"Issuing Authority",
	"Document Number",
	"Overall Confidence",
	"Reviewer Notes",
	"Decision Summary",
	"Created At",
}

// Writer builds an XLSX submissions report.
type Writer struct {
	file *excelize.File
	row  int
}

// NewWriter creates a Writer with the header row already populated.
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("export.NewWriter: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("export.NewWriter: %w", err)
	}
	return &Writer{file: f, row: 1}, nil
}

// WriteSubmissions appends one row per submission.
func (w *Writer) WriteSubmissions(subs []domain.Submission) error {
	for i := range subs {
		w.row++
		cell := fmt.Sprintf("A%d", w.row)
		row := submissionToRow(&subs[i])
		if err := w.file.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("export.WriteSubmissions: %w", err)
		}
	}
	return nil
}

// WriteTo serializes the workbook to w.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	return w.file.WriteTo(dst)
}

// Close releases the workbook's resources.
func (w *Writer) Close() error {
	return w.file.Close()
}

// submissionToRow converts one submission to a report row. Extraction
// columns are filled only when the submission carries a valid record;
// otherwise they stay empty and the metadata columns still identify it.
func submissionToRow(sub *domain.Submission) []interface{} {
	row := make([]interface{}, len(columns))
	for i := range row {
		row[i] = ""
	}

	row[0] = sub.ID.String()
	row[1] = string(sub.DocumentType)
	row[2] = string(sub.Status)
	row[3] = string(sub.ReviewStatus)
	row[18] = sub.ReviewerNotes
	row[19] = sub.DecisionSummary
	row[20] = sub.CreatedAt.Format(time.RFC3339)

	if len(sub.ExtractedRecord) == 0 {
		return row
	}
	var rec domain.ExtractedRecord
	if err := json.Unmarshal(sub.ExtractedRecord, &rec); err != nil {
		return row
	}

	row[4] = rec.PersonalInfo.FullName
	row[5] = rec.PersonalInfo.IDNumber
	row[6] = rec.PersonalInfo.DateOfBirth
	row[7] = rec.PersonalInfo.Gender
	row[8] = rec.PersonalInfo.Email
	row[9] = rec.PersonalInfo.Address.Village
	row[10] = rec.PersonalInfo.Address.Parish
	row[11] = rec.PersonalInfo.Address.SubCounty
	row[12] = rec.PersonalInfo.Address.County
	row[13] = rec.PersonalInfo.Address.District
	row[14] = rec.DocumentInfo.ExpiryDate
	row[15] = rec.DocumentInfo.IssuingAuthority
	row[16] = rec.DocumentInfo.DocumentNumber
	row[17] = strconv.FormatFloat(rec.Confidence.Overall, 'f', 1, 64)
	return row
}
