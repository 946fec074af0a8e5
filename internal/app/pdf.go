package app

import (
    "fmt"
    "strings"

    "github.com/jung-kurt/gofpdf"
)

// writeReportPDF renders an audit of a fill run: the form, the extracted
// resume fields and every value that was (or would have been) submitted.
func writeReportPDF(res FillResult, outPath string) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    // Core fonts are cp1252; translate so accented names survive
    tr := pdf.UnicodeTranslatorFromDescriptor("")
    pdf.SetFont("Helvetica", "", 11)
    pdf.AddPage()

    heading := func(text string) {
        pdf.Ln(3)
        pdf.SetFont("Helvetica", "B", 13)
        pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
        pdf.SetFont("Helvetica", "", 11)
    }
    line := func(label, value string) {
        if strings.TrimSpace(value) == "" { value = "-" }
        pdf.SetFont("Helvetica", "B", 11)
        pdf.CellFormat(40, 6, tr(label), "", 0, "L", false, 0, "")
        pdf.SetFont("Helvetica", "", 11)
        pdf.MultiCell(0, 6, tr(value), "", "L", false)
    }

    title := res.Title
    if title == "" { title = "Form fill report" }
    pdf.SetFont("Helvetica", "B", 16)
    pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
    pdf.SetFont("Helvetica", "", 11)
    line("Form URL", res.FormURL)
    line("Form ID", res.FormID)
    line("Status", res.Message())
    if res.Submission != nil && res.Submission.StatusCode != nil {
        line("HTTP status", fmt.Sprintf("%d", *res.Submission.StatusCode))
    }
    if res.Submission != nil && res.Submission.Diagnostic != "" {
        line("Diagnostic", res.Submission.Diagnostic)
    }

    if res.NotATSFriendly != nil {
        heading("Suggestions")
        for _, s := range res.NotATSFriendly.Suggestions {
            pdf.MultiCell(0, 6, tr("- "+s), "", "L", false)
        }
        return pdf.OutputFileAndClose(outPath)
    }

    heading("Resume")
    r := res.Resume
    line("Full Name", r.FullName)
    line("Email", r.Email)
    line("Phone Number", r.Phone)
    line("Address", r.Address)
    line("Education", strings.Join(r.Education, "; "))
    line("Work Experience", strings.Join(r.WorkExperience, "; "))
    line("Skills", strings.Join(r.Skills, ", "))

    heading("Fields")
    for _, e := range res.Entries {
        v, _ := res.Filled.Get(e.Key())
        label := e.Label
        if label == "" { label = e.Key() }
        if e.Required { label += " *" }
        line(label, v)
    }

    // Write file
    return pdf.OutputFileAndClose(outPath)
}
