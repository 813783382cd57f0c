package certificate

import (
	"encoding/json"
	"fmt"
)

// Certificate kinds as they appear on the wire.
const (
	KindCustom   = "custom"
	KindTemplate = "template"
)

// Overlay defaults applied by the data source when an event leaves
// them unset.
const (
	DefaultFontSize   = 36
	DefaultFontColor  = "#000000"
	DefaultFontWeight = "normal"
)

// ReferenceWidth is the template width the percentage and font-size
// values are authored against. Text drawn on a template of a different
// width is scaled by width/ReferenceWidth.
const ReferenceWidth = 800

// Payload is the wire shape of a certificate descriptor as served by
// the certificate-data endpoint. A non-empty Error field means the
// server could not resolve the participant; all other fields are then
// meaningless.
type Payload struct {
	Kind           string  `json:"kind,omitempty"`
	CertificateURL string  `json:"certificateUrl,omitempty"`
	TemplateURL    string  `json:"templateUrl,omitempty"`
	Name           string  `json:"name,omitempty"`
	XPercent       float64 `json:"xPercent,omitempty"`
	YPercent       float64 `json:"yPercent,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontFamily     string  `json:"fontFamily,omitempty"`
	FontColor      string  `json:"fontColor,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Descriptor is a parsed certificate descriptor. It is a closed union:
// the only implementations are CustomDescriptor and TemplateDescriptor,
// each carrying only the fields its rendering strategy needs.
type Descriptor interface {
	Kind() string
}

// CustomDescriptor points at a finished certificate image that is
// served as-is.
type CustomDescriptor struct {
	CertificateURL string
}

func (*CustomDescriptor) Kind() string { return KindCustom }

// TemplateDescriptor describes a background template plus the overlay
// configuration for the participant's name. XPercent/YPercent anchor
// the visual center of the text as a fraction of the template's width
// and height. FontSize is nominal at ReferenceWidth.
type TemplateDescriptor struct {
	TemplateURL string
	Name        string
	XPercent    float64
	YPercent    float64
	FontSize    float64
	FontWeight  string
	FontFamily  string
	FontColor   string
}

func (*TemplateDescriptor) Kind() string { return KindTemplate }

// ParseDescriptor decodes a descriptor body. A body carrying an error
// string yields a *DomainError.
func ParseDescriptor(data []byte) (Descriptor, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode certificate data: %w", err)
	}
	return FromPayload(p)
}

// FromPayload converts the wire shape into its descriptor variant,
// validating the fields the variant requires.
func FromPayload(p Payload) (Descriptor, error) {
	if p.Error != "" {
		return nil, &DomainError{Message: p.Error}
	}
	switch p.Kind {
	case KindCustom:
		if p.CertificateURL == "" {
			return nil, fmt.Errorf("custom certificate without certificateUrl")
		}
		return &CustomDescriptor{CertificateURL: p.CertificateURL}, nil
	case KindTemplate:
		if p.TemplateURL == "" {
			return nil, fmt.Errorf("template certificate without templateUrl")
		}
		if p.Name == "" {
			return nil, fmt.Errorf("template certificate without participant name")
		}
		d := &TemplateDescriptor{
			TemplateURL: p.TemplateURL,
			Name:        p.Name,
			XPercent:    p.XPercent,
			YPercent:    p.YPercent,
			FontSize:    p.FontSize,
			FontWeight:  p.FontWeight,
			FontFamily:  p.FontFamily,
			FontColor:   p.FontColor,
		}
		if d.FontSize <= 0 {
			d.FontSize = DefaultFontSize
		}
		if d.FontColor == "" {
			d.FontColor = DefaultFontColor
		}
		if d.FontWeight == "" {
			d.FontWeight = DefaultFontWeight
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown certificate kind %q", p.Kind)
	}
}
