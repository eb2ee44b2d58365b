package excel

import (
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/money"
)

// Generator builds the contracts-per-period workbook used by the back office
// for bookkeeping exports.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(periodStart, periodEnd time.Time, contracts []model.Contract) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Synthèse"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, periodStart, periodEnd, contracts); err != nil {
		return nil, err
	}

	detailSheet := "Contrats"
	if _, err := file.NewSheet(detailSheet); err != nil {
		return nil, err
	}
	if err := g.writeDetail(file, detailSheet, contracts); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, periodStart, periodEnd time.Time, contracts []model.Contract) error {
	var totalTTC, depositPaidTTC, cautionPaidTTC float64
	for _, contract := range contracts {
		totalTTC += contract.TotalTTC
		depositPaidTTC += contract.DepositPaidTTC
		cautionPaidTTC += contract.CautionPaidTTC
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Début de période")
	set("B1", formatDate(periodStart))
	set("A2", "Fin de période")
	set("B2", formatDate(periodEnd))
	set("A3", "Nombre de contrats")
	set("B3", len(contracts))
	set("A4", "Total TTC")
	set("B4", money.FormatAmount(totalTTC))
	set("A5", "Acomptes versés TTC")
	set("B5", money.FormatAmount(depositPaidTTC))
	set("A6", "Cautions versées TTC")
	set("B6", money.FormatAmount(cautionPaidTTC))

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 18)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, contracts []model.Contract) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Numéro",
		"Client",
		"Début",
		"Fin",
		"Règlement",
		"Total HT",
		"Total TTC",
		"Acompte versé TTC",
		"Caution due TTC",
		"Caution versée TTC",
		"Statut",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for row, contract := range contracts {
		values := []interface{}{
			contract.Number,
			contract.Customer.FullName(),
			formatDate(contract.StartAt),
			formatDate(contract.EndAt),
			contract.PaymentMethod,
			money.FormatAmount(contract.TotalHT),
			money.FormatAmount(contract.TotalTTC),
			money.FormatAmount(contract.DepositPaidTTC),
			money.FormatAmount(contract.CautionDueTTC),
			money.FormatAmount(contract.CautionPaidTTC),
			string(contract.Status),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			set(cell, value)
		}
	}

	_ = file.SetColWidth(sheet, "A", "B", 26)
	_ = file.SetColWidth(sheet, "C", "K", 16)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}
