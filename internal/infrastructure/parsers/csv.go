package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// requiredColumns lists the header columns each kind must carry.
var requiredColumns = map[string][]string{
	KindSubjects:  {"name"},
	KindRules:     {"name", "category", "severity"},
	KindChecks:    {"rule_id", "subject_id", "status"},
	KindCases:     {"subject_id", "title", "priority", "status"},
	KindDocuments: {"subject_id", "name"},
}

// CSVParser parses records of a single kind from CSV format.
type CSVParser struct {
	Kind string
}

// Parse reads CSV from the reader and returns a bundle holding only
// records of the parser's kind.
func (p *CSVParser) Parse(r io.Reader) (*RawBundle, error) {
	if !IsKind(p.Kind) {
		return nil, fmt.Errorf("unknown record kind %q", p.Kind)
	}

	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	for _, col := range requiredColumns[p.Kind] {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows into the bundle.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) (*RawBundle, error) {
	bundle := &RawBundle{}
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		row := csvRow{record: record, colIndex: colIndex}
		if err := p.appendRecord(bundle, row, lineNum); err != nil {
			return nil, err
		}
	}

	return bundle, nil
}

// appendRecord converts a CSV row into a raw record of the parser's kind.
func (p *CSVParser) appendRecord(bundle *RawBundle, row csvRow, lineNum int) error {
	switch p.Kind {
	case KindSubjects:
		bundle.Subjects = append(bundle.Subjects, RawSubject{
			ID:      row.get("id"),
			Name:    row.get("name"),
			LineNum: lineNum,
		})
	case KindRules:
		rule := RawRule{
			ID:          row.get("id"),
			Name:        row.get("name"),
			Description: row.get("description"),
			Category:    row.get("category"),
			Severity:    row.get("severity"),
			LineNum:     lineNum,
		}
		if s := row.get("enabled"); s != "" {
			enabled, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("line %d: invalid enabled value %q: %w", lineNum, s, err)
			}
			rule.Enabled = &enabled
		}
		bundle.Rules = append(bundle.Rules, rule)
	case KindChecks:
		bundle.Checks = append(bundle.Checks, RawCheck{
			ID:        row.get("id"),
			RuleID:    row.get("rule_id"),
			SubjectID: row.get("subject_id"),
			Status:    row.get("status"),
			Notes:     row.get("notes"),
			CheckedAt: row.get("checked_at"),
			LineNum:   lineNum,
		})
	case KindCases:
		bundle.Cases = append(bundle.Cases, RawCase{
			ID:          row.get("id"),
			SubjectID:   row.get("subject_id"),
			Title:       row.get("title"),
			Description: row.get("description"),
			Priority:    row.get("priority"),
			Status:      row.get("status"),
			CreatedAt:   row.get("created_at"),
			ResolvedAt:  row.get("resolved_at"),
			LineNum:     lineNum,
		})
	case KindDocuments:
		bundle.Documents = append(bundle.Documents, RawDocument{
			ID:         row.get("id"),
			SubjectID:  row.get("subject_id"),
			Name:       row.get("name"),
			Kind:       row.get("kind"),
			UploadedAt: row.get("uploaded_at"),
			ExpiryDate: row.get("expiry_date"),
			LineNum:    lineNum,
		})
	}
	return nil
}

type csvRow struct {
	record   []string
	colIndex map[string]int
}

// get safely retrieves a column value from a record.
func (r csvRow) get(col string) string {
	if idx, ok := r.colIndex[col]; ok && idx < len(r.record) {
		return r.record[idx]
	}
	return ""
}
