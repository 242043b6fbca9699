package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a.pdf":          "application/pdf",
		"a.PDF":          "application/octet-stream",
		"a.xyz":          "application/octet-stream",
		"archive.zip":    "application/zip",
		"sheet.xlsx":     "application/vnd.ms-excel",
		"old.xls":        "application/vnd.ms-excel",
		"photo.jpg":      "image/jpeg",
		"photo.jpeg":     "image/jpeg",
		"logo.png":       "image/png",
		"letter.docx":    "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"noext":          "application/octet-stream",
		"report.pdf.zip": "application/zip",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentTypeFor(name), name)
	}
}
