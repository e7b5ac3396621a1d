// Package validate collects per-field input violations into a single VALIDATION_ERROR.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// MaxAmount is the largest value a numeric(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// FieldError is one violated input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors accumulates field violations. The zero value is ready to use.
type Errors struct {
	err error
}

func (v *Errors) Add(field, message string) {
	v.err = multierr.Append(v.err, &FieldError{Field: field, Message: message})
}

func (v *Errors) Has(field string) bool {
	for _, e := range multierr.Errors(v.err) {
		if fe, ok := e.(*FieldError); ok && fe.Field == field {
			return true
		}
	}
	return false
}

func (v *Errors) Empty() bool {
	return v.err == nil
}

// Err returns nil when nothing was added, otherwise a VALIDATION_ERROR whose
// details map every failing field to its first message.
func (v *Errors) Err() error {
	if v.err == nil {
		return nil
	}
	details := map[string]string{}
	for _, e := range multierr.Errors(v.err) {
		fe, ok := e.(*FieldError)
		if !ok {
			continue
		}
		if _, seen := details[fe.Field]; !seen {
			details[fe.Field] = fe.Message
		}
	}
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return pkgerrors.Wrap(pkgerrors.CodeValidation, v.err, "invalid fields: "+strings.Join(fields, ", ")).
		WithDetails(details)
}

// Required trims value and records a violation when it is blank.
func (v *Errors) Required(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, field+" is required")
	}
	return value
}

// PositiveDecimal parses a required amount strictly greater than zero.
func (v *Errors) PositiveDecimal(field, value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, field+" is required")
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		v.Add(field, field+" must be a number")
		return decimal.Zero
	}
	switch {
	case !d.IsPositive():
		v.Add(field, field+" must be greater than 0")
	case d.Exponent() < -2 && !d.Equal(d.Truncate(2)):
		v.Add(field, field+" must have at most 2 decimal places")
	case d.GreaterThan(MaxAmount):
		v.Add(field, field+" must not exceed "+MaxAmount.StringFixed(2))
	}
	return d
}

// OptionalPositiveDecimal parses an amount that may be omitted.
func (v *Errors) OptionalPositiveDecimal(field, value string) decimal.NullDecimal {
	if strings.TrimSpace(value) == "" {
		return decimal.NullDecimal{}
	}
	d := v.PositiveDecimal(field, value)
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// MinInt parses a required integer no smaller than minValue.
func (v *Errors) MinInt(field, value string, minValue int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, field+" is required")
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		v.Add(field, field+" must be a whole number")
		return 0
	}
	if n < minValue {
		v.Add(field, fmt.Sprintf("%s must be at least %d", field, minValue))
	}
	return n
}

// Date parses a required YYYY-MM-DD or RFC 3339 date. ok is false when the field is missing or malformed.
func (v *Errors) Date(field, value string) (t time.Time, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, field+" is required")
		return time.Time{}, false
	}
	parsed, err := ParseDate(value)
	if err != nil {
		v.Add(field, field+" must be a date (YYYY-MM-DD)")
		return time.Time{}, false
	}
	return parsed, true
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns it in UTC.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
