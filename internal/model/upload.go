package model

// ProcessedImage describes one anonymized upload written to the static directory.
type ProcessedImage struct {
	OriginalFilename  string `json:"original_filename"`
	ProcessedFilename string `json:"processed_filename"`
	ProcessedURL      string `json:"processed_url"`
	FacesDetected     int    `json:"faces_detected"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
}
