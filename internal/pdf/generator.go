package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/money"
)

// Generator renders the printable rental contract handed to the customer.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Contrat de location de robe"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contrat n° %s du %s", doc.Contract.Number, formatDate(doc.Contract.CreatedAt))), "", 1, "C", false, 0, "")
	if doc.TypeName != "" {
		pdf.CellFormat(0, 6, tr(doc.TypeName), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Client"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, tr(safeValue(doc.Customer.FullName())), "", "L", false)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Téléphone : %s", safeValue(doc.Customer.Phone))), "", "L", false)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Email : %s", safeValue(doc.Customer.Email))), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Période de location"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("du %s au %s", formatDate(doc.Contract.StartAt), formatDate(doc.Contract.EndAt))), "", 1, "L", false, 0, "")
	if doc.Package != nil {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Forfait : %s (%d robes)", doc.Package.Name, doc.Package.NumDresses)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Robes"), "", 1, "L", false, 0, "")
	headers := []string{"Désignation", "Référence", "Prix TTC"}
	widths := []float64{100, 40, 40}
	g.drawTableRow(pdf, tr, headers, widths, true)
	for _, dress := range doc.Dresses {
		row := []string{dress.Name, dress.Reference, money.FormatAmount(dress.PriceTTC)}
		g.drawTableRow(pdf, tr, row, widths, false)
	}
	pdf.Ln(2)

	if len(doc.Addons) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, tr("Options"), "", 1, "L", false, 0, "")
		g.drawTableRow(pdf, tr, []string{"Option", "", "Prix TTC"}, widths, true)
		for _, addon := range doc.Addons {
			price := money.FormatAmount(addon.PriceTTC)
			if doc.Package != nil && doc.Package.IncludesAddon(addon.ID) {
				price = "incluse"
			}
			g.drawTableRow(pdf, tr, []string{addon.Name, "", price}, widths, false)
		}
		pdf.Ln(2)
	}

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Montants"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	amounts := []struct {
		label string
		ht    float64
		ttc   float64
	}{
		{"Total", doc.Contract.TotalHT, doc.Contract.TotalTTC},
		{"Acompte dû", doc.Contract.DepositDueHT, doc.Contract.DepositDueTTC},
		{"Acompte versé", doc.Contract.DepositPaidHT, doc.Contract.DepositPaidTTC},
		{"Caution due", doc.Contract.CautionDueHT, doc.Contract.CautionDueTTC},
		{"Caution versée", doc.Contract.CautionPaidHT, doc.Contract.CautionPaidTTC},
	}
	for _, amount := range amounts {
		line := fmt.Sprintf("%s : %s € HT / %s € TTC", amount.label, money.FormatAmount(amount.ht), money.FormatAmount(amount.ttc))
		pdf.CellFormat(0, 6, tr(line), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Règlement : %s", safeValue(doc.Contract.PaymentMethod))), "", 1, "L", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Signatures"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("La cliente : ______________________ /%s/", safeValue(doc.Customer.FullName()))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("La boutique : ______________________"), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02.01.2006")
}
