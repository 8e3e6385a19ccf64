// Package textextract turns uploaded pdf, docx and txt documents into plain text.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Format is a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

// ErrUnreadable wraps every extraction failure.
var ErrUnreadable = errors.New("document could not be read")

const docxBody = "word/document.xml"

// maxDOCXBodyBytes bounds the decompressed document part.
var maxDOCXBodyBytes int64 = 50 << 20

var errBodyTooLarge = errors.New("document body exceeds size limit")

// Supported maps a filename to its format using the extension, case-insensitively.
func Supported(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".txt":
		return FormatTXT, true
	default:
		return "", false
	}
}

// Extract returns the text content of data interpreted as format. NUL characters are removed.
func Extract(format Format, data []byte) (string, error) {
	text, err := extract(format, data)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(text, "\x00", ""), nil
}

func extract(format Format, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUnreadable)
	}

	switch format {
	case FormatPDF:
		if !sniff(data, "application/pdf") {
			return "", fmt.Errorf("%w: content is not a pdf", ErrUnreadable)
		}
		return extractPDF(data)
	case FormatDOCX:
		if !sniff(data, "application/zip") {
			return "", fmt.Errorf("%w: content is not a docx archive", ErrUnreadable)
		}
		return extractDOCX(data)
	case FormatTXT:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid utf-8", ErrUnreadable)
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrUnreadable, format)
	}
}

// WordCount counts whitespace separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// sniff reports whether the detected type or any of its parents is want.
func sniff(data []byte, want string) bool {
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is(want) {
			return true
		}
	}
	return false
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	for _, file := range archive.File {
		if file.Name != docxBody {
			continue
		}
		if file.UncompressedSize64 > uint64(maxDOCXBodyBytes) {
			return "", fmt.Errorf("%w: %v", ErrUnreadable, errBodyTooLarge)
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		defer rc.Close()
		return paragraphs(&cappedReader{r: rc, remaining: maxDOCXBodyBytes + 1})
	}
	return "", fmt.Errorf("%w: missing %s", ErrUnreadable, docxBody)
}

// paragraphs walks WordprocessingML and joins w:p elements with newlines.
func paragraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		out     []string
		current strings.Builder
		inText  bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if current.Len() > 0 {
					out = append(out, current.String())
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

// cappedReader fails once more than the permitted bytes have been read.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		return 0, errBodyTooLarge
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}
