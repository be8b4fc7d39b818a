package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/entity"
	"github.com/bapperida/siperjadin/internal/domain/repository"
)

// DocumentPDFGenerator renders the official A4 printout of an SPD/SPT.
// Implemented by the maroto adapter in internal/infrastructure/pdf.
type DocumentPDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, order *entity.TravelOrder) ([]byte, error)
}

// DocumentPDFUseCase produces the printable representation of a document.
// The signature block is only rendered for approved documents; the
// generator receives the joined approver name for that.
type DocumentPDFUseCase struct {
	repo      repository.TravelOrderRepository
	generator DocumentPDFGenerator
}

// NewDocumentPDFUseCase builds the use case.
func NewDocumentPDFUseCase(repo repository.TravelOrderRepository, generator DocumentPDFGenerator) *DocumentPDFUseCase {
	return &DocumentPDFUseCase{repo: repo, generator: generator}
}

// Download loads the document and renders it.
//
// Returns:
//   - (pdfBytes, filename, nil) on success
//   - domain.ErrNotFound when the document does not exist
func (uc *DocumentPDFUseCase) Download(ctx context.Context, id string) ([]byte, string, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if order == nil {
		return nil, "", domain.ErrNotFound
	}

	pdf, err := uc.generator.GenerateDocumentPDF(ctx, order)
	if err != nil {
		return nil, "", fmt.Errorf("generate document pdf: %w", err)
	}

	// SPD/001/BAPPERIDA/03/2025 -> SPD-001-BAPPERIDA-03-2025.pdf
	filename := strings.ReplaceAll(order.DocumentNumber, "/", "-") + ".pdf"
	return pdf, filename, nil
}
