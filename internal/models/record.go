package models

import "time"

type Record struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Status    Status    `json:"status"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transition is one entry of a record's status history.
type Transition struct {
	ID        string    `json:"id"`
	RecordID  string    `json:"record_id"`
	Kind      Kind      `json:"kind"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Actor     string    `json:"actor,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type TransitionRequest struct {
	To    Status `json:"to"`
	Actor string `json:"actor,omitempty"`
	Note  string `json:"note,omitempty"`
}

type Activity struct {
	ID          string    `json:"id"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Actor       string    `json:"actor,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MenuItem struct {
	ID       string `json:"id,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Label    string `json:"label"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}
