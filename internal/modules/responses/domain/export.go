package domain

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

const timeLayout = time.RFC3339Nano

// Flatten turns a record into dotted keys, one CSV column each.
func Flatten(r Record) map[string]string {
	out := map[string]string{
		"id":                              r.ID,
		"user_info.session_id":            r.UserInfo.SessionID,
		"user_info.start_time":            formatTime(r.UserInfo.StartTime),
		"user_info.last_updated":          formatTime(r.UserInfo.LastUpdated),
		"user_info.completion_status":     string(r.UserInfo.CompletionStatus),
		"user_info.completion_percentage": strconv.Itoa(r.UserInfo.CompletionPercentage),
		"user_info.current_section":       r.UserInfo.CurrentSection,
	}
	if r.UserInfo.CompletionTime != nil {
		out["user_info.completion_time"] = formatTime(*r.UserInfo.CompletionTime)
	}
	for section, answers := range r.Sections {
		flattenValue(out, section, answers)
	}
	return out
}

func flattenValue(out map[string]string, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for k, inner := range v {
			flattenValue(out, prefix+"."+k, inner)
		}
	default:
		out[prefix] = formatValue(v)
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		return strings.Join(v, "; ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(v)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// Columns is the union of flattened keys across rows: id first, then
// user_info fields, then sections in survey order, each group sorted.
func Columns(rows []map[string]string) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Slice(cols, func(i, j int) bool {
		ri, rj := columnRank(cols[i]), columnRank(cols[j])
		if ri != rj {
			return ri < rj
		}
		return cols[i] < cols[j]
	})
	return cols
}

func columnRank(col string) int {
	if col == "id" {
		return 0
	}
	head, _, _ := strings.Cut(col, ".")
	if head == "user_info" {
		return 1
	}
	for i, key := range SectionKeys {
		if head == key {
			return 2 + i
		}
	}
	return 2 + len(SectionKeys)
}

// QuoteCell wraps value in double quotes, doubling any inside.
func QuoteCell(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// WriteCSV writes one header row and one row per record. Every cell is
// quoted; missing values are empty quoted cells.
func WriteCSV(w io.Writer, records []Record) (columns int, err error) {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, Flatten(r))
	}
	cols := Columns(rows)

	bw := bufio.NewWriter(w)
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				_, _ = bw.WriteString(",")
			}
			_, _ = bw.WriteString(QuoteCell(cell))
		}
		_, _ = bw.WriteString("\n")
	}
	writeRow(cols)
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = row[col]
		}
		writeRow(cells)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(cols), nil
}
