// Package pdf renders the printable form of a travel document (SPD/SPT).
//
// A4 page layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Agency name + unit   │  Document number + date      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TITLE: SURAT PERINTAH PERJALANAN DINAS / SURAT TUGAS        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: employee / NIP / position / destination / purpose    │
//	│         travel dates / duration / budget                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SIGNATURE: approver name + approval date (approved only)    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/bapperida/siperjadin/internal/domain/entity"
	"github.com/bapperida/siperjadin/internal/domain/travelorder"
)

const agencyName = "Badan Perencanaan, Penelitian dan Pengembangan Daerah"

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoDocumentGenerator implements usecase.DocumentPDFGenerator using
// Maroto v2.
type MarotoDocumentGenerator struct{}

// NewMarotoDocumentGenerator builds the generator.
func NewMarotoDocumentGenerator() *MarotoDocumentGenerator { return &MarotoDocumentGenerator{} }

// GenerateDocumentPDF renders the document and returns its bytes.
func (g *MarotoDocumentGenerator) GenerateDocumentPDF(_ context.Context, order *entity.TravelOrder) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle(order.DocumentNumber, true).
		WithAuthor(travelorder.IssuingUnit, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.8}))
	m.AddRows(titleRow(order))
	m.AddRows(line.NewRow(2))

	for _, r := range detailRows(order) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(2))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(signatureRows(order)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: agency name (left) and document number + issue date (right).
func headerRow(order *entity.TravelOrder) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(travelorder.IssuingUnit, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(agencyName, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Nomor Dokumen", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(order.DocumentNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Tanggal: "+order.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// titleRow: full document name, by type.
func titleRow(order *entity.TravelOrder) core.Row {
	title := "SURAT PERINTAH TUGAS"
	if order.DocumentType == entity.TypeSPD {
		title = "SURAT PERINTAH PERJALANAN DINAS"
	}
	return row.New(12).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 13, Align: align.Center,
			Color: colorPrimary, Top: 3,
		}),
	))
}

// detailRows: one labelled row per document field.
func detailRows(order *entity.TravelOrder) []core.Row {
	period := fmt.Sprintf("%s s.d. %s (%d hari)",
		order.StartDate.Format("02/01/2006"),
		order.EndDate.Format("02/01/2006"),
		order.DurationDays,
	)
	budget := "—"
	if order.Budget != nil {
		budget = "Rp " + formatRupiah(order.Budget.StringFixed(0))
	}

	fields := []struct{ label, value string }{
		{"Nama Pegawai", order.EmployeeName},
		{"NIP", order.EmployeeNIP},
		{"Jabatan", order.Position},
		{"Tujuan", order.Destination},
		{"Maksud Perjalanan", order.Purpose},
		{"Waktu Pelaksanaan", period},
		{"Anggaran", budget},
	}
	if order.Notes != "" {
		fields = append(fields, struct{ label, value string }{"Catatan", order.Notes})
	}

	rows := make([]core.Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, row.New(8).Add(
			col.New(4).Add(text.New(f.label, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 1,
			})),
			col.New(8).Add(text.New(": "+f.value, props.Text{
				Size: 9, Top: 1,
			})),
		))
	}
	return rows
}

// signatureRows: approval block. Approved documents carry the approver's
// name and approval date; anything else prints the current status instead.
func signatureRows(order *entity.TravelOrder) []core.Row {
	if order.Status != entity.StatusApproved || order.ApprovedAt == nil {
		return []core.Row{
			row.New(10).Add(col.New(12).Add(
				text.New("Status dokumen: "+statusLabel(order.Status), props.Text{
					Style: fontstyle.Italic, Size: 9, Color: colorGray, Top: 3,
				}),
			)),
		}
	}

	return []core.Row{
		row.New(8).Add(
			col.New(7),
			col.New(5).Add(text.New(
				"Disetujui, "+order.ApprovedAt.Format("02/01/2006"),
				props.Text{Size: 9, Align: align.Center, Top: 2},
			)),
		),
		row.New(22).Add(
			col.New(7),
			col.New(5).Add(text.New(order.ApproverName, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 18,
			})),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(status string) string {
	switch status {
	case entity.StatusDraft:
		return "Draf"
	case entity.StatusPendingApproval:
		return "Menunggu Persetujuan"
	case entity.StatusRejected:
		return "Ditolak"
	case entity.StatusCompleted:
		return "Selesai"
	default:
		return status
	}
}

// formatRupiah inserts thousands separators into a numeric string without
// decimals. Eg: "2500000" → "2.500.000"
func formatRupiah(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
