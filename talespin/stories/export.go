package stories

import (
	"bytes"
	"encoding/json"
)

const (
	FormatPDF  = "pdf"
	FormatText = "text"
)

type ExportResult struct {
	Format      string `json:"format"`
	Title       string `json:"title"`
	DownloadURL string `json:"download_url,omitempty"`
	Content     string `json:"content,omitempty"`
}

// premium users get a PDF download link, everyone else a plain text rendering
func Export(s *Story, premium bool) ExportResult {
	if premium {
		return ExportResult{
			Format:      FormatPDF,
			Title:       s.Title,
			DownloadURL: "/api/v1/stories/" + s.ID + "/export/pdf",
		}
	}

	return ExportResult{
		Format:  FormatText,
		Title:   s.Title,
		Content: s.Title + "\n\n" + s.Description + "\n\n" + compactJSON(s.Content),
	}
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}

	return buf.String()
}
