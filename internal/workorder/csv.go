// Package workorder imports and exports work-order sheets.
package workorder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bizflow/internal/models"
)

const dateLayout = "2006-01-02"

var Header = []string{"Order #", "Product", "Quantity", "Priority", "Status", "Planned Start", "Planned End"}

var ErrBadHeader = errors.New("work order csv: unexpected header")

// RowError points at the offending line of an import.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("work order csv: line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Line breaks inside a cell would split a row in two.
var flatten = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func Row(wo models.WorkOrder) []string {
	return []string{
		flatten.Replace(wo.OrderNumber),
		flatten.Replace(wo.Product),
		strconv.Itoa(wo.Quantity),
		flatten.Replace(wo.Priority),
		flatten.Replace(string(wo.Status)),
		formatDate(wo.PlannedStart),
		formatDate(wo.PlannedEnd),
	}
}

// WriteCSV writes the header followed by one line per work order.
func WriteCSV(w io.Writer, orders []models.WorkOrder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, wo := range orders {
		if err := cw.Write(Row(wo)); err != nil {
			return fmt.Errorf("write work order %s: %w", wo.OrderNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a sheet produced by WriteCSV. Import stops at the first
// bad row.
func ReadCSV(r io.Reader) ([]models.WorkOrder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil, ErrBadHeader
	}
	if err != nil {
		return nil, &RowError{Line: 1, Err: err}
	}
	for i, h := range Header {
		if strings.TrimSpace(strings.TrimPrefix(head[i], "\ufeff")) != h {
			return nil, ErrBadHeader
		}
	}

	var res []models.WorkOrder
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		wo, err := parseRow(rec)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		res = append(res, wo)
	}
	return res, nil
}

func parseRow(rec []string) (models.WorkOrder, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(rec[2]))
	if err != nil {
		return models.WorkOrder{}, fmt.Errorf("quantity %q: %w", rec[2], err)
	}
	start, err := parseDate(rec[5])
	if err != nil {
		return models.WorkOrder{}, fmt.Errorf("planned start: %w", err)
	}
	end, err := parseDate(rec[6])
	if err != nil {
		return models.WorkOrder{}, fmt.Errorf("planned end: %w", err)
	}
	return models.WorkOrder{
		OrderNumber:  strings.TrimSpace(rec[0]),
		Product:      strings.TrimSpace(rec[1]),
		Quantity:     qty,
		Priority:     strings.TrimSpace(rec[3]),
		Status:       models.Status(strings.TrimSpace(rec[4])),
		PlannedStart: start,
		PlannedEnd:   end,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
