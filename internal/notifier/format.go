package notifier

import (
	"fmt"
	"strings"

	"github.com/peacewatch/peacewatch/internal/models"
	"github.com/peacewatch/peacewatch/pkg/utils"
)

// FormatSubject builds the notification subject line for a report
func FormatSubject(report models.Report) string {
	return "New incident report: " + report.Title
}

// FormatBody builds the fixed notification template: title, location, joined
// categories, formatted date and a truncated preview of the report content.
func FormatBody(report models.Report, previewLen int) string {
	preview := report.Content
	if preview == "" {
		preview = report.Description
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", report.Title)
	fmt.Fprintf(&b, "Location: %s\n", report.Location)
	if len(report.Categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(report.Categories, ", "))
	}
	fmt.Fprintf(&b, "Date: %s\n", report.CreatedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "\n%s\n", utils.Truncate(preview, previewLen))
	return b.String()
}
