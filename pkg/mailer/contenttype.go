package mailer

import "strings"

const defaultContentType = "application/octet-stream"

// contentTypes is matched in order against the end of the file name.
// Matching is case-sensitive: "report.PDF" falls through to the default.
var contentTypes = []struct {
	suffix string
	mime   string
}{
	{".zip", "application/zip"},
	{".pdf", "application/pdf"},
	{".xlsx", "application/vnd.ms-excel"},
	{".xls", "application/vnd.ms-excel"},
	{".jpg", "image/jpeg"},
	{".jpeg", "image/jpeg"},
	{".png", "image/png"},
	{".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// ContentTypeFor infers an attachment's MIME type from its file name.
func ContentTypeFor(filename string) string {
	for _, ct := range contentTypes {
		if strings.HasSuffix(filename, ct.suffix) {
			return ct.mime
		}
	}
	return defaultContentType
}
