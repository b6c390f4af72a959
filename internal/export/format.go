package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rpps-dados/carteira/internal/domain"
)

const utf8BOM = "\ufeff"

// CSVFormat is the single delimiter and decimal-mark policy used by every CSV writer.
type CSVFormat struct {
	Name             string
	Comma            rune
	DecimalSeparator string
	BOM              bool
}

var (
	// FormatSpreadsheet targets pt-BR spreadsheet tools: "1234,56;" with a UTF-8 BOM.
	FormatSpreadsheet = CSVFormat{Name: "planilha", Comma: ';', DecimalSeparator: ",", BOM: true}
	// FormatPlain uses the conventional "1234.56," layout without a BOM.
	FormatPlain = CSVFormat{Name: "padrao", Comma: ',', DecimalSeparator: ".", BOM: false}
)

// ParseCSVFormat returns the format registered under name.
func ParseCSVFormat(name string) (CSVFormat, error) {
	switch name {
	case FormatSpreadsheet.Name:
		return FormatSpreadsheet, nil
	case FormatPlain.Name:
		return FormatPlain, nil
	default:
		return CSVFormat{}, fmt.Errorf("unknown CSV format %q", name)
	}
}

// FormatDecimal renders d with exactly two decimals and the format's decimal mark.
func (f CSVFormat) FormatDecimal(d decimal.Decimal) string {
	return f.localize(d.StringFixed(domain.ReportPrecision))
}

// ParseDecimal reverses FormatDecimal.
func (f CSVFormat) ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if f.DecimalSeparator != "." {
		s = strings.Replace(s, f.DecimalSeparator, ".", 1)
	}
	return decimal.NewFromString(s)
}

func (f CSVFormat) localize(number string) string {
	if f.DecimalSeparator == "." {
		return number
	}
	return strings.Replace(number, ".", f.DecimalSeparator, 1)
}
