package transitions

import "bizflow/internal/models"

func act(label string, target models.Status) models.Action {
	return models.Action{Label: label, Target: target}
}

func destructive(label string, target models.Status) models.Action {
	return models.Action{Label: label, Target: target, Destructive: true}
}

// graph holds the ordered next-step actions per kind and source status.
// Terminal statuses have no entry.
var graph = map[models.Kind]map[models.Status][]models.Action{
	models.KindOrder: {
		"pending":    {act("Confirm", "confirmed"), destructive("Cancel", "cancelled")},
		"confirmed":  {act("Start Processing", "processing"), destructive("Cancel", "cancelled")},
		"processing": {act("Ship", "shipped"), destructive("Cancel", "cancelled")},
		"shipped":    {act("Mark Delivered", "delivered")},
		"delivered":  {destructive("Refund", "refunded")},
	},
	models.KindReservation: {
		"pending":    {act("Confirm", "confirmed"), destructive("Cancel", "cancelled")},
		"confirmed":  {act("Check In", "checked_in"), destructive("No Show", "no_show"), destructive("Cancel", "cancelled")},
		"checked_in": {act("Check Out", "checked_out")},
	},
	models.KindInvoice: {
		"draft":   {act("Send", "sent"), destructive("Cancel", "cancelled")},
		"sent":    {act("Mark Viewed", "viewed"), act("Record Partial Payment", "partial"), act("Mark Paid", "paid"), act("Mark Overdue", "overdue"), destructive("Cancel", "cancelled")},
		"viewed":  {act("Record Partial Payment", "partial"), act("Mark Paid", "paid"), act("Mark Overdue", "overdue"), destructive("Cancel", "cancelled")},
		"partial": {act("Mark Paid", "paid"), act("Mark Overdue", "overdue")},
		"overdue": {act("Record Partial Payment", "partial"), act("Mark Paid", "paid"), destructive("Cancel", "cancelled")},
	},
	models.KindLegalCase: {
		"open":        {act("Start Work", "in_progress"), destructive("Close", "closed")},
		"in_progress": {act("Put On Hold", "on_hold"), act("Mark Won", "won"), destructive("Mark Lost", "lost"), destructive("Close", "closed")},
		"on_hold":     {act("Resume", "in_progress"), destructive("Close", "closed")},
	},
	models.KindInquiry: {
		"new":               {act("Mark Contacted", "contacted"), destructive("Mark Lost", "lost")},
		"contacted":         {act("Schedule Viewing", "viewing_scheduled"), act("Start Negotiation", "negotiating"), destructive("Mark Lost", "lost")},
		"viewing_scheduled": {act("Start Negotiation", "negotiating"), destructive("Mark Lost", "lost")},
		"negotiating":       {act("Convert", "converted"), destructive("Mark Lost", "lost")},
	},
	models.KindTransaction: {
		"pending":        {act("Go Under Contract", "under_contract"), destructive("Cancel", "cancelled")},
		"under_contract": {act("Start Closing", "closing"), destructive("Cancel", "cancelled")},
		"closing":        {act("Close", "closed"), destructive("Cancel", "cancelled")},
	},
	models.KindWorkOrder: {
		"draft":       {act("Release", "open"), destructive("Cancel", "cancelled")},
		"open":        {act("Start", "in_progress"), act("Hold", "on_hold"), destructive("Cancel", "cancelled")},
		"in_progress": {act("Complete", "completed"), act("Hold", "on_hold"), destructive("Cancel", "cancelled")},
		"on_hold":     {act("Resume", "in_progress"), act("Reopen", "open"), destructive("Cancel", "cancelled")},
	},
	models.KindQualityCheck: {
		"pending":     {act("Start Inspection", "in_progress")},
		"in_progress": {act("Pass", "passed"), destructive("Fail", "failed")},
	},
	models.KindTourBooking: {
		"pending":   {act("Confirm", "confirmed"), destructive("Cancel", "cancelled")},
		"confirmed": {act("Complete", "completed"), destructive("Cancel", "cancelled")},
	},
}
