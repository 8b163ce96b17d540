package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/sentinel"
)

type column int

const (
	colCode column = iota
	colProvince
	colPrefecture
	colCounty
	colSource
)

// columnFor maps a header cell to a column. Region tables are usually
// published with Chinese headers.
func columnFor(header string) (column, bool) {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "code", "region_code", "行政区划代码":
		return colCode, true
	case "province", "省级":
		return colProvince, true
	case "prefecture", "city", "地市级":
		return colPrefecture, true
	case "county", "district", "县区级":
		return colCounty, true
	case "source", "数据来源":
		return colSource, true
	}
	return 0, false
}

// DecodeXLSX reads the first sheet of a workbook. The first row is the
// header; code and province columns are required, the rest are optional.
// Blank rows are skipped.
func DecodeXLSX(r io.Reader) (map[string]residentid.Region, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %v: %w", err, sentinel.ErrMalformed)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, sentinel.ErrEmpty
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Error(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, sentinel.ErrEmpty
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		if blank(cols) {
			continue
		}
		records = append(records, Record{
			Code:       cell(cols, index, colCode),
			Province:   cell(cols, index, colProvince),
			Prefecture: cell(cols, index, colPrefecture),
			County:     cell(cols, index, colCounty),
			Source:     cell(cols, index, colSource),
		})
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return build(records, "")
}

func headerIndex(header []string) (map[column]int, error) {
	index := make(map[column]int, len(header))
	for i, h := range header {
		col, ok := columnFor(h)
		if !ok {
			continue
		}
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}
	if _, ok := index[colCode]; !ok {
		return nil, fmt.Errorf("header %v has no code column: %w", header, sentinel.ErrMalformed)
	}
	if _, ok := index[colProvince]; !ok {
		return nil, fmt.Errorf("header %v has no province column: %w", header, sentinel.ErrMalformed)
	}
	return index, nil
}

func cell(cols []string, index map[column]int, col column) string {
	i, ok := index[col]
	if !ok || i >= len(cols) {
		return ""
	}
	return cols[i]
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// XLSXFile loads a region workbook from the filesystem.
type XLSXFile struct {
	path string
}

func NewXLSXFile(path string) *XLSXFile {
	return &XLSXFile{path: path}
}

func (s *XLSXFile) Name() string {
	return "xlsx:" + filepath.Base(s.path)
}

func (s *XLSXFile) Load(ctx context.Context) (map[string]residentid.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", s.path, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return DecodeXLSX(f)
}
