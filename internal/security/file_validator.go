package security

import (
	"bytes"
	"fmt"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
)

// FileValidator rejects content that is not text source, such as binaries
// saved under a source extension
type FileValidator struct {
	HeaderSize int // bytes inspected for signatures and the printable ratio
}

func NewFileValidator() *FileValidator {
	return &FileValidator{HeaderSize: 64 * 1024}
}

// File signatures that never belong in a source file
var binarySignatures = []struct {
	name  string
	magic []byte
}{
	{"PNG image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"JPEG image", []byte{0xFF, 0xD8, 0xFF}},
	{"GIF image", []byte("GIF8")},
	{"PDF document", []byte("%PDF-")},
	{"ZIP archive", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip archive", []byte{0x1F, 0x8B}},
	{"ELF executable", []byte{0x7F, 0x45, 0x4C, 0x46}},
	{"Mach-O executable", []byte{0xCF, 0xFA, 0xED, 0xFE}},
	{"WebAssembly module", []byte{0x00, 0x61, 0x73, 0x6D}},
}

// ValidateContent returns an error wrapping ErrBinary when data is not text
func (fv *FileValidator) ValidateContent(data []byte) error {
	header := data
	if fv.HeaderSize > 0 && len(header) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}

	if kind := fv.checkMagicBytes(header); kind != "" {
		return fmt.Errorf("%w: %s signature", cgerrors.ErrBinary, kind)
	}
	if fv.isBinaryData(header) {
		return fmt.Errorf("%w: non-printable data", cgerrors.ErrBinary)
	}
	return nil
}

func (fv *FileValidator) checkMagicBytes(header []byte) string {
	for _, sig := range binarySignatures {
		if bytes.HasPrefix(header, sig.magic) {
			return sig.name
		}
	}
	return ""
}

// isBinaryData treats any NUL byte, or more than 30% control characters, as binary
func (fv *FileValidator) isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range data {
		// Control characters other than tab, LF, VT, FF, CR, and DEL
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}
