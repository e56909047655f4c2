package sources

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dmikhr/cardtrend/internal/domain"
)

// gradePattern matches grading annotations in listing titles, e.g. "PSA 10".
var gradePattern = regexp.MustCompile(`(?i)\b(PSA|BGS|CGC|SGC)\s*(10|9\.5|9|8\.5|8)\b`)

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// listing is the generic sold-listing record the adapters exchange with their
// backends. Page-specific extraction lives outside this module; payloads
// arrive already reduced to this shape.
type listing struct {
	Price     string `json:"price"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Condition string `json:"condition"`
}

// historyPoint is the price-history record format: numeric price, optional
// explicit grade annotation instead of a free-form title.
type historyPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
	Grade string  `json:"grade,omitempty"`
}

// ListingParser parses a JSON array of sold listings, skipping records whose
// price or date cannot be parsed.
func ListingParser(source string) Parser {
	return func(payload []byte, _ domain.Query) ([]domain.Observation, error) {
		var items []listing
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, errors.Wrap(err, "decode listings payload")
		}

		obs := make([]domain.Observation, 0, len(items))
		for _, it := range items {
			price, ok := parsePrice(it.Price)
			if !ok {
				continue
			}
			ts, ok := parseDate(it.Date)
			if !ok {
				continue
			}

			o := domain.Observation{
				Timestamp: ts,
				Price:     price,
				Source:    source,
				Condition: normalizeCondition(it.Condition),
			}
			if company, grade, ok := detectGrade(it.Title); ok {
				o.Graded = true
				o.GradeCompany = company
				o.GradeValue = grade
			}
			obs = append(obs, o)
		}
		return obs, nil
	}
}

// HistoryParser parses a JSON array of price-history points.
func HistoryParser(source string) Parser {
	return func(payload []byte, _ domain.Query) ([]domain.Observation, error) {
		var points []historyPoint
		if err := json.Unmarshal(payload, &points); err != nil {
			return nil, errors.Wrap(err, "decode history payload")
		}

		obs := make([]domain.Observation, 0, len(points))
		for _, p := range points {
			ts, ok := parseDate(p.Date)
			if !ok || p.Price <= 0 {
				continue
			}

			o := domain.Observation{
				Timestamp: ts,
				Price:     decimal.NewFromFloat(p.Price),
				Source:    source,
				Condition: "Ungraded",
			}
			if company, grade, ok := detectGrade(p.Grade); ok {
				o.Graded = true
				o.GradeCompany = company
				o.GradeValue = grade
				o.Condition = "Graded"
			}
			obs = append(obs, o)
		}
		return obs, nil
	}
}

// parsePrice parses strings like "$1,234.56" into a decimal.
func parsePrice(s string) (decimal.Decimal, bool) {
	clean := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
	if clean == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil || !d.GreaterThan(decimal.Zero) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// parseDate tries the known date layouts in order.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// detectGrade extracts a grading company and grade value from free text.
func detectGrade(s string) (string, float64, bool) {
	m := gradePattern.FindStringSubmatch(s)
	if m == nil {
		return "", 0, false
	}
	grade, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(m[1]), grade, true
}

func normalizeCondition(s string) string {
	switch {
	case strings.Contains(s, "Near Mint"), strings.Contains(s, "NM"):
		return "Near Mint"
	case strings.Contains(s, "Mint"):
		return "Mint"
	case strings.Contains(s, "New"):
		return "New"
	case s == "":
		return "Used"
	default:
		return s
	}
}
