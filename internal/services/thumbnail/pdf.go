package thumbnail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// PDFStrategy previews a document by extracting the first embedded image
// from page one. Scanned documents and cover pages are images in the PDF
// object graph, so extraction covers the common case without rasterizing.
type PDFStrategy struct {
	maxWidth int
	quality  int
	logger   arbor.ILogger
	tempDir  string
}

var _ interfaces.ThumbnailStrategy = (*PDFStrategy)(nil)

func NewPDFStrategy(maxWidth, quality int, logger arbor.ILogger) *PDFStrategy {
	tempDir := filepath.Join(os.TempDir(), "colligo-pdf")
	os.MkdirAll(tempDir, 0755)

	return &PDFStrategy{
		maxWidth: maxWidth,
		quality:  quality,
		logger:   logger,
		tempDir:  tempDir,
	}
}

func (s *PDFStrategy) Derive(ctx context.Context, input interfaces.DeriveInput) (models.ThumbnailState, error) {
	if len(input.Data) == 0 {
		return models.ThumbnailState{}, &models.ThumbnailDerivationError{
			Kind:   models.KindPDF,
			Reason: "no document data supplied",
		}
	}

	raw, err := s.extractFirstPageImage(input.Data, input.Generation)
	if err != nil {
		return models.ThumbnailState{}, &models.ThumbnailDerivationError{
			Kind:   models.KindPDF,
			Reason: err.Error(),
		}
	}

	preview, err := encodePreview(raw, s.maxWidth, s.quality)
	if err != nil {
		return models.ThumbnailState{}, &models.ThumbnailDerivationError{
			Kind:   models.KindPDF,
			Reason: err.Error(),
		}
	}

	s.logger.Debug().
		Int("preview_bytes", len(preview)).
		Msg("Derived document preview")

	return models.LocalBlobThumbnail(input.Generation, preview, ""), nil
}

// extractFirstPageImage writes the document to a temp file, extracts the
// images on page 1 and returns the first one found.
func (s *PDFStrategy) extractFirstPageImage(data []byte, generation uint64) ([]byte, error) {
	tempFile := filepath.Join(s.tempDir, fmt.Sprintf("preview_%d_%d.pdf", os.Getpid(), generation))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	defer os.Remove(tempFile)

	outDir := filepath.Join(s.tempDir, fmt.Sprintf("images_%d_%d", os.Getpid(), generation))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(tempFile, outDir, []string{"1"}, conf); err != nil {
		return nil, fmt.Errorf("failed to extract page images: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".webp", ".tif", ".tiff":
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("page 1 contains no extractable image")
	}

	// pdfcpu names images by object number; the lowest is drawn first
	sort.Strings(names)
	raw, err := os.ReadFile(filepath.Join(outDir, names[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted image: %w", err)
	}
	return raw, nil
}
