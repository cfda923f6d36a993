package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"easset/internal/model"
)

// CountCsvTemplate is the header callers should follow when a file is
// rejected wholesale. The header itself is optional: headerless files are
// parsed positionally in this column order.
const CountCsvTemplate = "assetNo,statusCode,note,method,qty"

// CsvImportResult reports how many rows landed and every per-line problem.
// A wholesale rejection leaves Imported at zero with a single error entry.
type CsvImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

type countCsvColumns struct {
	assetNo    int
	statusCode int
	note       int
	method     int
	qty        int
}

// positionalCountColumns is the fallback for headerless files, matching the
// CountCsvTemplate column order.
var positionalCountColumns = countCsvColumns{assetNo: 0, statusCode: 1, note: 2, method: 3, qty: 4}

// sniffCountHeader maps header names to column positions. Matching is
// case-insensitive and tolerates the aliases seen in field exports. A false
// return means the row is data, not a header.
func sniffCountHeader(header []string) (countCsvColumns, bool) {
	cols := countCsvColumns{assetNo: -1, statusCode: -1, note: -1, method: -1, qty: -1}
	for i, raw := range header {
		name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
		switch name {
		case "assetno", "assetnumber", "asset":
			cols.assetNo = i
		case "statuscode", "status", "accountingstatuscode", "accountingstatus":
			cols.statusCode = i
		case "note", "notes", "remark":
			cols.note = i
		case "method", "countmethod":
			cols.method = i
		case "qty", "quantity", "countedqty":
			cols.qty = i
		}
	}
	return cols, cols.assetNo >= 0 && cols.statusCode >= 0
}

// splitCountRows separates an optional header from the data rows. lineOffset
// converts a data-row index into its 1-based line number in the file.
func splitCountRows(rows [][]string) (cols countCsvColumns, data [][]string, lineOffset int) {
	if cols, ok := sniffCountHeader(rows[0]); ok {
		return cols, rows[1:], 2
	}
	return positionalCountColumns, rows, 1
}

// looksLikeSapPipeFile reports whether the upload is a pipe-delimited SAP
// master extract. SAP rows carry many pipe separators, so a stray pipe inside
// a note column does not trip the check: at least half of the sampled lines
// must contain four or more pipes.
func looksLikeSapPipeFile(text string) bool {
	sampled, pipeHeavy := 0, 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sampled++
		if strings.Count(line, "|") >= 4 {
			pipeHeavy++
		}
		if sampled == 5 {
			break
		}
	}
	return sampled > 0 && pipeHeavy*2 >= sampled
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ImportCountCsv ingests a count file into the given plant-year. The header
// row is optional; headerless files are read positionally. Rows are applied
// independently: a bad line is reported and the rest continue.
func (s *stocktakeService) ImportCountCsv(ctx context.Context, plantID string, year int, actorName string, content []byte) (*CsvImportResult, error) {
	text := strings.TrimSpace(string(content))
	if text == "" {
		return &CsvImportResult{Errors: []string{"the file is empty"}}, nil
	}
	if looksLikeSapPipeFile(text) {
		return &CsvImportResult{Errors: []string{
			fmt.Sprintf("this looks like a SAP master file; expected a count sheet with header %q", CountCsvTemplate),
		}}, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	result := &CsvImportResult{}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// The closed-year check runs before any row inspection so a
		// single-line file against a closed year still reports "closed".
		config, err := s.getOrCreateYearConfigTx(txCtx, plantID, year)
		if err != nil {
			return err
		}
		if !config.IsOpen {
			result.Errors = append(result.Errors, fmt.Sprintf("stocktake year %d is closed", year))
			return nil
		}

		cols, data, lineOffset := splitCountRows(rows)
		if len(data) == 0 {
			result.Errors = append(result.Errors, "the file has no data rows")
			return nil
		}

		for i, row := range data {
			lineNo := i + lineOffset

			assetNo := cell(row, cols.assetNo)
			if assetNo == "" {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Line %d: missing asset number", lineNo))
				continue
			}

			statusCode := strings.ToUpper(cell(row, cols.statusCode))
			if !isValidCountStatus(statusCode) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Line %d: unknown status code %q", lineNo, statusCode))
				continue
			}

			qty := 1
			if raw := cell(row, cols.qty); raw != "" {
				if parsed, err := strconv.Atoi(raw); err == nil && parsed > 1 {
					qty = parsed
				}
			}

			req := UpsertCountRequest{
				AssetNo:       assetNo,
				StatusCode:    statusCode,
				CountMethod:   strings.ToUpper(cell(row, cols.method)),
				CountedQty:    qty,
				CountedByName: actorName,
				NoteText:      cell(row, cols.note),
			}
			if _, err := s.upsertRecordTx(txCtx, plantID, year, req); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %v", lineNo, err))
				continue
			}
			result.Imported++
		}

		if result.Imported == 0 {
			return nil
		}
		return s.audit(txCtx, actorName, model.ActionImportStocktakeCsv, plantID, year, map[string]interface{}{
			"imported": result.Imported,
			"skipped":  result.Skipped,
		})
	})
	if err != nil {
		return nil, err
	}

	if result.Imported > 0 {
		s.notify("stocktake.imported", plantID, year)
	}
	return result, nil
}

// ImportAccountingCsv applies accounting review statuses from a two-column
// file (assetNo, accountingStatusCode). The header row is optional. Rows for
// unknown assets are reported, never auto-created.
func (s *stocktakeService) ImportAccountingCsv(ctx context.Context, plantID string, year int, actorName string, content []byte) (*CsvImportResult, error) {
	text := strings.TrimSpace(string(content))
	if text == "" {
		return &CsvImportResult{Errors: []string{"the file is empty"}}, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	cols, data, lineOffset := splitCountRows(rows)
	if len(data) == 0 {
		return &CsvImportResult{Errors: []string{"the file has no data rows"}}, nil
	}

	result := &CsvImportResult{}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, row := range data {
			lineNo := i + lineOffset

			assetNo := cell(row, cols.assetNo)
			status := strings.ToUpper(cell(row, cols.statusCode))
			if assetNo == "" {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Line %d: missing asset number", lineNo))
				continue
			}
			switch status {
			case model.AccountingStatusSubmit, model.AccountingStatusApproved, model.AccountingStatusReject:
			default:
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Line %d: unknown accounting status %q", lineNo, status))
				continue
			}

			if _, err := s.SetAccountingStatus(txCtx, plantID, year, AccountingReviewRequest{
				AssetNo:              assetNo,
				AccountingStatusCode: status,
				ActorName:            actorName,
			}); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Line %d: no count record for asset %s", lineNo, assetNo))
				continue
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
