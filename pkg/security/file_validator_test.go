package security_test

import (
	"testing"

	"kqs-apply/pkg/security"

	"github.com/stretchr/testify/assert"
)

func TestInspectDocument(t *testing.T) {
	pdf := []byte("%PDF-1.7\n...")
	docx := []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}
	doc := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}

	tests := []struct {
		name     string
		filename string
		data     []byte
		valid    bool
		mime     string
	}{
		{"pdf", "cv.pdf", pdf, true, security.MIMEPDF},
		{"upper case extension", "CV.PDF", pdf, true, security.MIMEPDF},
		{"docx", "cv.docx", docx, true, security.MIMEDocx},
		{"doc", "cv.doc", doc, true, security.MIMEDoc},
		{"text file", "cv.txt", []byte("hello there"), false, "text/plain"},
		{"spoofed pdf", "cv.pdf", []byte("hello there"), false, "text/plain"},
		{"no extension", "cv", pdf, false, security.MIMEPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := security.InspectDocument(tt.filename, tt.data)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.mime, got.DetectedMIME)
			if !tt.valid {
				assert.NotEmpty(t, got.Error)
			}
		})
	}
}

func TestIsCVContentType(t *testing.T) {
	assert.True(t, security.IsCVContentType("application/pdf"))
	assert.True(t, security.IsCVContentType("Application/PDF"))
	assert.True(t, security.IsCVContentType(security.MIMEDocx))
	assert.True(t, security.IsCVContentType("application/msword; charset=binary"))
	assert.False(t, security.IsCVContentType("text/plain"))
	assert.False(t, security.IsCVContentType(""))
}
