package app

// NotATSFriendly is returned instead of resume data when a document yields
// no text, which is what applicant tracking systems would see too.
type NotATSFriendly struct {
	Error       string   `json:"error"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

func NewNotATSFriendly() NotATSFriendly {
	return NotATSFriendly{
		Error:   "This PDF is NOT ATS-friendly",
		Message: "Your resume appears to be a scanned image or uses formatting that prevents text extraction. ATS (Applicant Tracking Systems) cannot read this type of PDF.",
		Suggestions: []string{
			"Export your resume as a 'text-based PDF' from your word processor",
			"Use File > Save As > PDF (not Print to PDF)",
			"Upload a DOCX file instead",
			"Avoid using images or special fonts",
			"Test your PDF: Can you select and copy text from it? If not, it's not ATS-friendly",
		},
	}
}
