// Package source loads documents from disk as normalized UTF-8 text.
package source

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// ErrUnsupported is returned for file types Load cannot read.
var ErrUnsupported = errors.New("unsupported file type")

// ErrInvalidEncoding is returned when plain text is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8")

// Document is one loaded input. ID is the path exactly as given, so
// documents with the same base name in different directories stay apart.
type Document struct {
	ID   string
	Path string
	Text string
}

// Load reads path and extracts its text according to the file extension.
func Load(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".txt", ".md", ".text":
		text, err = loadPlain(path)
	case ".html", ".htm":
		text, err = loadHTML(path)
	case ".docx":
		text, err = loadDOCX(path)
	case ".pdf":
		text, err = loadPDF(path)
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return Document{
		ID:   path,
		Path: path,
		Text: Normalize(text),
	}, nil
}

// LoadAll loads every path in order.
func LoadAll(ctx context.Context, paths []string) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := Load(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Normalize converts line breaks to \n and composes text to NFC.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}

func loadPlain(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		return "", ErrInvalidEncoding
	}
	return string(raw), nil
}

// Block elements end a line; consecutive blocks are separated by a blank
// line so that each one forms its own paragraph.
const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, blockquote, pre, td"

func loadHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	return extractHTML(f)
}

func extractHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, head").Remove()

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if text := collapseSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		if text := collapseSpace(doc.Text()); text != "" {
			blocks = append(blocks, text)
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func loadDOCX(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extractDOCX(raw)
}

func extractDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}
	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		xmlData, err = io.ReadAll(rc)
		if cerr := rc.Close(); cerr != nil {
			// Best-effort close of a zip entry.
			_ = cerr
		}
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return "", fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var paragraphs []string
	var current strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte(' ')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()

	return joinPages(r.NumPage(), func(i int) (string, error) {
		p := r.Page(i)
		if p.V.IsNull() {
			return "", nil
		}
		return p.GetPlainText(nil)
	})
}

// joinPages extracts pages 1..n and joins the non-empty ones. A page that
// fails is skipped; when no page yields text the first failure is returned.
func joinPages(n int, extract func(page int) (string, error)) (string, error) {
	var (
		pages    []string
		firstErr error
	)
	for i := 1; i <= n; i++ {
		content, err := extract(i)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: %w", i, err)
			}
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	if len(pages) == 0 {
		if firstErr != nil {
			return "", fmt.Errorf("no extractable text found in pdf: %w", firstErr)
		}
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return strings.Join(pages, "\n\n"), nil
}
