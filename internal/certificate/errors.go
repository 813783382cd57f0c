package certificate

import "fmt"

// TransportError means the descriptor endpoint could not be reached or
// answered with a non-2xx status.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("certificate data request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("certificate data request %s: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DomainError means the endpoint answered 2xx but the descriptor body
// carried a server-side error string.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return "certificate data error: " + e.Message
}

// ImageLoadError means the finished certificate image could not be
// fetched or decoded.
type ImageLoadError struct {
	URL string
	Err error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("certificate image %s: %v", e.URL, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// TemplateLoadError means the background template image could not be
// fetched or decoded.
type TemplateLoadError struct {
	URL string
	Err error
}

func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("certificate template %s: %v", e.URL, e.Err)
}

func (e *TemplateLoadError) Unwrap() error { return e.Err }

// EncodingError means the finished surface could not be encoded to PNG.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("certificate encode: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
