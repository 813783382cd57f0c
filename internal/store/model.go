package store

// Event groups participants and carries the template overlay
// configuration used for dynamically composed certificates.
type Event struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Visible     bool   `json:"visible"`

	// Template-based composition config. TemplateFile is relative to
	// the data dir's templates folder; Positioned reports whether both
	// anchor percentages were supplied.
	TemplateFile string  `json:"template_file,omitempty"`
	XPercent     float64 `json:"x_percent"`
	YPercent     float64 `json:"y_percent"`
	Positioned   bool    `json:"-"`
	FontSize     float64 `json:"font_size"`
	FontColor    string  `json:"font_color"`
	FontFamily   string  `json:"font_family"`
	FontWeight   string  `json:"font_weight"`
}

// HasTemplate reports whether the event composes certificates from a
// template instead of serving pre-made files.
func (e *Event) HasTemplate() bool {
	return e.TemplateFile != ""
}

// Participant is one certificate recipient. CertificateFile is set for
// pre-made certificates and empty for template-based events.
type Participant struct {
	ID              int    `json:"id"`
	EventID         int    `json:"event_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	CertificateFile string `json:"certificate_file,omitempty"`
}
