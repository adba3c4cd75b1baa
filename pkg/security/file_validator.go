package security

import (
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDoc  = "application/msword"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// MaxCVBytes is the largest CV accepted by the apply form (5 MiB).
	MaxCVBytes int64 = 5 * 1024 * 1024
)

// FileValidationResult contains the result of inspecting an uploaded document
type FileValidationResult struct {
	Valid        bool   // Extension is whitelisted and content matches it
	Extension    string // Lowercased file extension
	DetectedMIME string // Canonical type when Valid, sniffed type otherwise
	Error        string // Reason when not Valid
}

// Magic byte signatures for CV documents
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                         // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                         // ZIP (PK..)
}

// extensionMIME maps each whitelisted extension to the content type sent with the upload
var extensionMIME = map[string]string{
	".pdf":  MIMEPDF,
	".doc":  MIMEDoc,
	".docx": MIMEDocx,
}

var cvMIMETypes = map[string]bool{
	MIMEPDF:  true,
	MIMEDoc:  true,
	MIMEDocx: true,
}

// IsCVContentType reports whether contentType (parameters ignored) is a PDF or Word document
func IsCVContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return cvMIMETypes[mediaType]
}

// InspectDocument checks a CV file in two layers:
// 1. Extension whitelist (.pdf, .doc, .docx)
// 2. Magic byte verification (content matches extension)
// Files failing either layer report the sniffed content type so the caller's
// content-type rule rejects them.
func InspectDocument(filename string, data []byte) FileValidationResult {
	ext := strings.ToLower(filepath.Ext(filename))
	result := FileValidationResult{
		Extension:    ext,
		DetectedMIME: sniff(data),
	}

	if ext == "" {
		result.Error = "file has no extension"
		return result
	}

	canonical, ok := extensionMIME[ext]
	if !ok {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension (potential file spoofing detected)"
		return result
	}

	result.Valid = true
	result.DetectedMIME = canonical
	return result
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false // File too small to validate
	}

	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func sniff(data []byte) string {
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}
