package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

func init() {
	// The license key may live in .env; this init can run before main loads it.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	// The legal corpus arrives mostly as PDFs (codes, statutes), so the UniPDF
	// license is loaded once at startup. Plain-text ingestion works without it.
	if err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY")); err != nil {
		log.Printf("WARN: Failed to set Unidoc license key: %v. PDF extraction will fail.", err)
	}
}

// ExtractTextFromFile reads a corpus file and returns its text content,
// dispatching on the file extension.
func ExtractTextFromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case ".pdf":
		return extractTextFromPDF(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// maxPDFPages bounds extraction for statute-sized PDFs. The full Estatuto
// Tributario runs to over a thousand pages; anything beyond the cap is far
// more likely a scan artifact than useful corpus text.
const maxPDFPages = 2000

// extractTextFromPDF uses UniPDF to get the text from a PDF file, skipping
// blank pages (common separator pages in the official legal codes).
func extractTextFromPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}
	if numPages > maxPDFPages {
		log.Printf("WARN: %s has %d pages, extracting only the first %d.", path, numPages, maxPDFPages)
		numPages = maxPDFPages
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}
