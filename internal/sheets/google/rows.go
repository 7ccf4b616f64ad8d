package google

import (
	"fmt"
	"strconv"
	"strings"

	"finance/internal/core"
	ports "finance/internal/sheets"
)

// mirrorRow renders t in MirrorHeader column order. Amount is a plain
// decimal so USER_ENTERED keeps it numeric.
func mirrorRow(t core.Transaction) []any {
	return []any{
		strconv.FormatInt(t.ID, 10),
		t.Date,
		t.Type.String(),
		t.Category,
		t.Amount.String(),
		t.Description,
	}
}

func mirrorValues(txs []core.Transaction) [][]any {
	header := make([]any, len(ports.MirrorHeader))
	for i, h := range ports.MirrorHeader {
		header[i] = h
	}
	out := make([][]any, 0, len(txs)+1)
	out = append(out, header)
	for _, t := range txs {
		out = append(out, mirrorRow(t))
	}
	return out
}

// findRow returns the 1-based sheet row whose first cell is id, or 0.
func findRow(colA [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range colA {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toMatrix(values [][]any) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = toStrings(row)
	}
	return out
}

// sheetRange quotes names with spaces as A1 notation requires.
func sheetRange(sheet, cells string) string {
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}
