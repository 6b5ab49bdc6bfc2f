package model

// CorrectionExport is the top-level JSON structure for the export command.
type CorrectionExport struct {
	ExportedAt string             `json:"exported_at"`
	Count      int                `json:"count"`
	Results    []CorrectionResult `json:"results"`
}
