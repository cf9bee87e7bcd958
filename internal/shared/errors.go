package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Upload errors
	ErrInvalidFileType = fmt.Errorf("not an audio file")
	ErrEmptyUpload     = fmt.Errorf("empty upload")

	// Recognition errors
	ErrNoMatch           = fmt.Errorf("no match found")
	ErrRecognitionFailed = fmt.Errorf("recognition request failed")

	// Catalog errors
	ErrCatalogAuth    = fmt.Errorf("catalog authentication failed")
	ErrCatalogRequest = fmt.Errorf("catalog request failed")

	// Pipeline errors
	ErrScanInFlight      = fmt.Errorf("a scan is already in progress")
	ErrInvalidTransition = fmt.Errorf("invalid state transition")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
