package vocabulary

import "bizflow/internal/models"

type entry struct {
	status   models.Status
	label    string
	variant  models.Variant
	icon     string
	terminal bool
}

// tables lists each kind's vocabulary; the first entry is the initial status.
var tables = map[models.Kind][]entry{
	models.KindOrder: {
		{"pending", "Pending", models.VariantWarning, "clock", false},
		{"confirmed", "Confirmed", models.VariantInfo, "check", false},
		{"processing", "Processing", models.VariantIndigo, "cog", false},
		{"shipped", "Shipped", models.VariantInfo, "truck", false},
		{"delivered", "Delivered", models.VariantSuccess, "package-check", true},
		{"cancelled", "Cancelled", models.VariantError, "x-circle", true},
		{"refunded", "Refunded", models.VariantError, "rotate-ccw", true},
	},
	models.KindReservation: {
		{"pending", "Pending", models.VariantWarning, "clock", false},
		{"confirmed", "Confirmed", models.VariantInfo, "check", false},
		{"checked_in", "Checked In", models.VariantSuccess, "log-in", false},
		{"checked_out", "Checked Out", models.VariantNeutral, "log-out", true},
		{"no_show", "No Show", models.VariantError, "user-x", true},
		{"cancelled", "Cancelled", models.VariantError, "x-circle", true},
	},
	models.KindInvoice: {
		{"draft", "Draft", models.VariantNeutral, "file", false},
		{"sent", "Sent", models.VariantInfo, "send", false},
		{"viewed", "Viewed", models.VariantIndigo, "eye", false},
		{"partial", "Partially Paid", models.VariantWarning, "pie-chart", false},
		{"overdue", "Overdue", models.VariantError, "alert-triangle", false},
		{"paid", "Paid", models.VariantSuccess, "check-circle", true},
		{"cancelled", "Cancelled", models.VariantError, "x-circle", true},
	},
	models.KindLegalCase: {
		{"open", "Open", models.VariantInfo, "folder-open", false},
		{"in_progress", "In Progress", models.VariantIndigo, "briefcase", false},
		{"on_hold", "On Hold", models.VariantWarning, "pause", false},
		{"won", "Won", models.VariantSuccess, "award", true},
		{"lost", "Lost", models.VariantError, "x-octagon", true},
		{"closed", "Closed", models.VariantNeutral, "folder", true},
	},
	models.KindInquiry: {
		{"new", "New", models.VariantInfo, "inbox", false},
		{"contacted", "Contacted", models.VariantIndigo, "phone", false},
		{"viewing_scheduled", "Viewing Scheduled", models.VariantWarning, "calendar", false},
		{"negotiating", "Negotiating", models.VariantWarning, "message-circle", false},
		{"converted", "Converted", models.VariantSuccess, "check-circle", true},
		{"lost", "Lost", models.VariantError, "x-circle", true},
	},
	models.KindTransaction: {
		{"pending", "Pending", models.VariantWarning, "clock", false},
		{"under_contract", "Under Contract", models.VariantIndigo, "file-text", false},
		{"closing", "Closing", models.VariantInfo, "key", false},
		{"closed", "Closed", models.VariantSuccess, "check-circle", true},
		{"cancelled", "Cancelled", models.VariantError, "x-circle", true},
	},
	models.KindWorkOrder: {
		{"draft", "Draft", models.VariantNeutral, "file", false},
		{"open", "Open", models.VariantInfo, "clipboard", false},
		{"in_progress", "In Progress", models.VariantIndigo, "cog", false},
		{"on_hold", "On Hold", models.VariantWarning, "pause", false},
		{"completed", "Completed", models.VariantSuccess, "check-circle", true},
		{"cancelled", "Cancelled", models.VariantError, "x-circle", true},
	},
	models.KindQualityCheck: {
		{"pending", "Pending", models.VariantWarning, "clock", false},
		{"in_progress", "In Progress", models.VariantIndigo, "search", false},
		{"passed", "Passed", models.VariantSuccess, "check-circle", true},
		{"failed", "Failed", models.VariantError, "x-circle", true},
	},
	models.KindTourBooking: {
		{"pending", "Pending", models.VariantWarning, "clock", false},
		{"confirmed", "Confirmed", models.VariantInfo, "check", false},
		{"completed", "Completed", models.VariantSuccess, "flag", true},
		{"cancelled", "Cancelled", models.VariantError, "x-circle", true},
	},
}

var kindOrder = []models.Kind{
	models.KindOrder,
	models.KindReservation,
	models.KindInvoice,
	models.KindLegalCase,
	models.KindInquiry,
	models.KindTransaction,
	models.KindWorkOrder,
	models.KindQualityCheck,
	models.KindTourBooking,
}
