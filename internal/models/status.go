package models

import "strings"

type Kind string

const (
	KindOrder        Kind = "order"
	KindReservation  Kind = "reservation"
	KindInvoice      Kind = "invoice"
	KindLegalCase    Kind = "legal_case"
	KindInquiry      Kind = "inquiry"
	KindTransaction  Kind = "transaction"
	KindWorkOrder    Kind = "work_order"
	KindQualityCheck Kind = "quality_check"
	KindTourBooking  Kind = "tour_booking"
)

type Status string

// Normalize trims and lowercases a status as received from a client or a
// legacy row.
func (s Status) Normalize() Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}

// Variant is the visual category of a badge, decoupled from the raw status.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
	VariantInfo    Variant = "info"
	VariantNeutral Variant = "neutral"
	VariantIndigo  Variant = "indigo"
)

// Descriptor is what a page needs to render a status badge.
type Descriptor struct {
	Status  Status  `json:"status"`
	Label   string  `json:"label"`
	Variant Variant `json:"variant"`
	Icon    string  `json:"icon"`
	Known   bool    `json:"known"`
}

// Action is a user-facing button requesting a specific next status.
type Action struct {
	Label       string `json:"label"`
	Target      Status `json:"target_status"`
	Destructive bool   `json:"is_destructive"`
}
