// Package loader parses a brokerage CSV export into raw positions.
// Malformed rows are skipped with a warning rather than failing the
// whole import; non-position rows ("Pending Activity") are routed into
// their own cash bucket before any parsing happens.
package loader

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/mingdom/folio/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PositionRow mirrors the brokerage export columns. Everything is kept
// as a string here because the export formats money as "$1,234.56" and
// shorts as "-3"; cleaning happens in one place below.
type PositionRow struct {
	Symbol           string `csv:"Symbol"`
	Description      string `csv:"Description"`
	Quantity         string `csv:"Quantity"`
	LastPrice        string `csv:"Last Price"`
	CurrentValue     string `csv:"Current Value"`
	AverageCostBasis string `csv:"Average Cost Basis"`
}

// RawPortfolio is the parse result before any market data is attached:
// stock betas and option underlying prices are still unset.
type RawPortfolio struct {
	Stocks          []domain.StockPosition
	Options         []domain.OptionPosition
	CashCandidates  []domain.CashLikePosition
	PendingActivity decimal.Decimal
}

// optionDescription matches e.g. "AAPL JAN 17 2025 $150 CALL" or
// "SPY MAR 21 2025 $580.50 PUT".
var optionDescription = regexp.MustCompile(`^([A-Z.]+) ([A-Z]{3}) (\d{1,2}) (\d{4}) \$([\d.]+) (CALL|PUT)$`)

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// Loader parses exports using the injected cash-like patterns; there is
// no package-level symbol list to go stale.
type Loader struct {
	CashPatterns []string
	Logger       *zap.SugaredLogger
}

func New(cashPatterns []string, logger *zap.SugaredLogger) *Loader {
	return &Loader{CashPatterns: cashPatterns, Logger: logger}
}

// Parse reads the CSV export and splits rows into stocks, options,
// cash-like candidates and the pending-activity bucket.
func (l *Loader) Parse(r io.Reader) (*RawPortfolio, error) {
	rows := []PositionRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio csv: %w", err)
	}

	out := &RawPortfolio{PendingActivity: decimal.Zero}

	for i, row := range rows {
		symbol := strings.TrimSpace(row.Symbol)
		description := strings.TrimSpace(row.Description)

		if symbol == "" && description == "" {
			continue
		}

		if isPendingActivity(symbol, description) {
			value, err := parseMoney(row.CurrentValue)
			if err != nil {
				l.Logger.Warnf("skipping pending activity row %d: unparseable value %q", i, row.CurrentValue)
				continue
			}
			out.PendingActivity = out.PendingActivity.Add(value)
			continue
		}

		if matches := optionDescription.FindStringSubmatch(description); matches != nil {
			opt, err := parseOption(symbol, description, matches, row)
			if err != nil {
				l.Logger.Warnf("skipping option row %d (%s): %v", i, description, err)
				continue
			}
			out.Options = append(out.Options, opt)
			continue
		}

		if l.matchesCashPattern(symbol, description) {
			value, err := parseMoney(row.CurrentValue)
			if err != nil {
				l.Logger.Warnf("skipping cash-like row %d (%s): %v", i, symbol, err)
				continue
			}
			out.CashCandidates = append(out.CashCandidates, domain.CashLikePosition{
				Ticker:      symbol,
				Description: description,
				Value:       value,
			})
			continue
		}

		stock, err := parseStock(symbol, description, row)
		if err != nil {
			l.Logger.Warnf("skipping stock row %d (%s): %v", i, symbol, err)
			continue
		}
		out.Stocks = append(out.Stocks, stock)
	}

	return out, nil
}

// matchesCashPattern is the heuristic half of cash-like detection; the
// beta-threshold half runs later, once betas are known.
func (l *Loader) matchesCashPattern(symbol, description string) bool {
	upperSym := strings.ToUpper(symbol)
	upperDesc := strings.ToUpper(description)
	for _, pattern := range l.CashPatterns {
		p := strings.ToUpper(pattern)
		if upperSym == p || strings.Contains(upperDesc, p) {
			return true
		}
	}
	return false
}

func isPendingActivity(symbol, description string) bool {
	return strings.EqualFold(symbol, "Pending Activity") ||
		strings.Contains(strings.ToUpper(description), "PENDING ACTIVITY")
}

func parseOption(symbol, description string, matches []string, row PositionRow) (domain.OptionPosition, error) {
	month, ok := months[matches[2]]
	if !ok {
		return domain.OptionPosition{}, fmt.Errorf("unknown month %q", matches[2])
	}

	day, err := decimal.NewFromString(matches[3])
	if err != nil {
		return domain.OptionPosition{}, fmt.Errorf("bad day %q", matches[3])
	}
	year, err := decimal.NewFromString(matches[4])
	if err != nil {
		return domain.OptionPosition{}, fmt.Errorf("bad year %q", matches[4])
	}
	strike, err := decimal.NewFromString(matches[5])
	if err != nil || !strike.IsPositive() {
		return domain.OptionPosition{}, fmt.Errorf("bad strike %q", matches[5])
	}

	quantity, err := parseMoney(row.Quantity)
	if err != nil {
		return domain.OptionPosition{}, fmt.Errorf("bad quantity %q", row.Quantity)
	}
	lastPrice, err := parseMoney(row.LastPrice)
	if err != nil {
		return domain.OptionPosition{}, fmt.Errorf("bad last price %q", row.LastPrice)
	}
	currentValue, err := parseMoney(row.CurrentValue)
	if err != nil {
		currentValue = decimal.Zero
	}
	costBasis, err := parseMoney(row.AverageCostBasis)
	if err != nil {
		costBasis = decimal.Zero
	}

	expiry := time.Date(int(year.IntPart()), month, int(day.IntPart()), 0, 0, 0, 0, time.UTC)

	optionType := domain.Call
	if matches[6] == "PUT" {
		optionType = domain.Put
	}

	return domain.OptionPosition{
		ID:           uuid.New(),
		Underlying:   matches[1],
		OptionType:   optionType,
		Strike:       strike.InexactFloat64(),
		Expiry:       expiry,
		Quantity:     int(quantity.IntPart()),
		LastPrice:    lastPrice.InexactFloat64(),
		Description:  description,
		CurrentValue: currentValue,
		CostBasis:    costBasis,
	}, nil
}

func parseStock(symbol, description string, row PositionRow) (domain.StockPosition, error) {
	if symbol == "" {
		return domain.StockPosition{}, fmt.Errorf("missing symbol")
	}

	quantity, err := parseMoney(row.Quantity)
	if err != nil {
		return domain.StockPosition{}, fmt.Errorf("bad quantity %q", row.Quantity)
	}
	price, err := parseMoney(row.LastPrice)
	if err != nil {
		return domain.StockPosition{}, fmt.Errorf("bad last price %q", row.LastPrice)
	}
	currentValue, err := parseMoney(row.CurrentValue)
	if err != nil {
		currentValue = decimal.Zero
	}
	costBasis, err := parseMoney(row.AverageCostBasis)
	if err != nil {
		costBasis = decimal.Zero
	}

	return domain.StockPosition{
		ID:           uuid.New(),
		Ticker:       symbol,
		Quantity:     quantity.InexactFloat64(),
		Price:        price.InexactFloat64(),
		Description:  description,
		CurrentValue: currentValue,
		CostBasis:    costBasis,
	}, nil
}

// parseMoney handles the export's money formats: "$1,234.56",
// "-$432.10", "(432.10)" for negatives, and plain numbers.
func parseMoney(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" || cleaned == "--" {
		return decimal.Zero, fmt.Errorf("empty value")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "%", "")
	cleaned = strings.TrimSpace(cleaned)

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable number %q", s)
	}
	if negative {
		value = value.Neg()
	}
	return value, nil
}
