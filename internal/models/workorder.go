package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type WorkOrder struct {
	OrderNumber  string    `json:"order_number"`
	Product      string    `json:"product"`
	Quantity     int       `json:"quantity"`
	Priority     string    `json:"priority"`
	Status       Status    `json:"status"`
	PlannedStart time.Time `json:"planned_start"`
	PlannedEnd   time.Time `json:"planned_end"`
}

// UnmarshalJSON accepts planned dates as YYYY-MM-DD, RFC 3339, empty or null.
func (w *WorkOrder) UnmarshalJSON(data []byte) error {
	type plain WorkOrder
	aux := struct {
		*plain
		PlannedStart *string `json:"planned_start"`
		PlannedEnd   *string `json:"planned_end"`
	}{plain: (*plain)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	if w.PlannedStart, err = parsePlannedDate(aux.PlannedStart); err != nil {
		return fmt.Errorf("planned_start: %w", err)
	}
	if w.PlannedEnd, err = parsePlannedDate(aux.PlannedEnd); err != nil {
		return fmt.Errorf("planned_end: %w", err)
	}
	return nil
}

func parsePlannedDate(s *string) (time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, nil
	}
	v := strings.TrimSpace(*s)
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
