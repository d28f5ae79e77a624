package setting

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

const (
	valueField = "value"

	// MaxCharLength bounds char and slug values.
	MaxCharLength = 140
	// MaxURLLength bounds url values.
	MaxURLLength = 2048
	// MaxEmailLength bounds email values.
	MaxEmailLength = 254
	// MaxDecimalDigits is the total number of digits of a decimal value.
	MaxDecimalDigits = 9
	// MaxDecimalPlaces is the number of fractional digits of a decimal value.
	MaxDecimalPlaces = 4

	dateLayout = "2006-01-02"
	timeLayout = "15:04:05.999999"
)

// Value is the typed payload of a setting. The concrete type determines the kind.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

type (
	// CharValue is a short, translated text.
	CharValue string
	// TextValue is a long, translated text.
	TextValue string
	// SlugValue is a translated slug.
	SlugValue string
	// URLValue is a translated absolute URL.
	URLValue string
	// EmailValue is an email address.
	EmailValue string
	// BooleanValue is a flag.
	BooleanValue bool
	// NumberValue is a 32 bit integer.
	NumberValue int32
)

// DateTimeValue is an instant, kept in UTC with microsecond precision.
type DateTimeValue struct{ time.Time }

// DateValue is a calendar date, kept as midnight UTC.
type DateValue struct{ time.Time }

// TimeValue is a time of day, as the offset from midnight.
type TimeValue struct{ time.Duration }

// DecimalValue is an exact fixed-point number.
type DecimalValue struct{ decimal.Decimal }

// NewDateTime returns t normalised to UTC and microseconds.
func NewDateTime(t time.Time) DateTimeValue {
	return DateTimeValue{t.UTC().Truncate(time.Microsecond)}
}

// NewDate returns the calendar date y-m-d.
func NewDate(y int, m time.Month, d int) DateValue {
	return DateValue{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewTime returns the time of day h:m:s plus nsec, truncated to microseconds.
func NewTime(h, m, s, nsec int) TimeValue {
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(nsec)
	return TimeValue{d.Truncate(time.Microsecond)}
}

// NewDecimal parses s into a DecimalValue.
func NewDecimal(s string) (DecimalValue, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return DecimalValue{}, err //nolint:wrapcheck
	}

	return DecimalValue{d}, nil
}

func (CharValue) Kind() Kind     { return KindChar }
func (TextValue) Kind() Kind     { return KindText }
func (SlugValue) Kind() Kind     { return KindSlug }
func (URLValue) Kind() Kind      { return KindURL }
func (EmailValue) Kind() Kind    { return KindEmail }
func (BooleanValue) Kind() Kind  { return KindBoolean }
func (NumberValue) Kind() Kind   { return KindNumber }
func (DateTimeValue) Kind() Kind { return KindDateTime }
func (DateValue) Kind() Kind     { return KindDate }
func (TimeValue) Kind() Kind     { return KindTime }
func (DecimalValue) Kind() Kind  { return KindDecimal }

func (v CharValue) String() string    { return string(v) }
func (v TextValue) String() string    { return string(v) }
func (v SlugValue) String() string    { return string(v) }
func (v URLValue) String() string     { return string(v) }
func (v EmailValue) String() string   { return string(v) }
func (v BooleanValue) String() string { return strconv.FormatBool(bool(v)) }
func (v NumberValue) String() string  { return strconv.FormatInt(int64(v), 10) }
func (v DateTimeValue) String() string {
	return v.UTC().Format(time.RFC3339Nano)
}
func (v DateValue) String() string { return v.Format(dateLayout) }
func (v DecimalValue) String() string {
	return v.Decimal.String()
}

// String renders HH:MM:SS with microseconds when present.
func (v TimeValue) String() string {
	return time.Time{}.Add(v.Duration).Format(timeLayout)
}

func (CharValue) isValue()     {}
func (TextValue) isValue()     {}
func (SlugValue) isValue()     {}
func (URLValue) isValue()      {}
func (EmailValue) isValue()    {}
func (BooleanValue) isValue()  {}
func (NumberValue) isValue()   {}
func (DateTimeValue) isValue() {}
func (DateValue) isValue()     {}
func (TimeValue) isValue()     {}
func (DecimalValue) isValue()  {}

// Equal reports whether a and b are the same kind and value.
// Decimals compare numerically, instants compare as instants.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case DecimalValue:
		return av.Equal(b.(DecimalValue).Decimal) //nolint:forcetypeassert
	case DateTimeValue:
		return av.Equal(b.(DateTimeValue).Time) //nolint:forcetypeassert
	case DateValue:
		return av.String() == b.String()
	default:
		return a == b
	}
}

// JSONValue returns the representation of v used in API payloads.
// Decimals are strings so no precision is lost.
func JSONValue(v Value) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case BooleanValue:
		return bool(tv)
	case NumberValue:
		return int32(tv)
	default:
		return v.String()
	}
}

var dateTimeLayouts = []string{ //nolint:gochecknoglobals
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

var timeLayouts = []string{ //nolint:gochecknoglobals
	timeLayout,
	"15:04",
}

// ParseValue converts the text form of a value of kind k.
// Times without a zone are read as UTC.
func ParseValue(k Kind, raw string) (Value, *validation.Error) {
	switch k {
	case KindChar:
		return CharValue(raw), nil
	case KindText:
		return TextValue(raw), nil
	case KindSlug:
		return SlugValue(raw), nil
	case KindURL:
		return URLValue(strings.TrimSpace(raw)), nil
	case KindEmail:
		return EmailValue(strings.TrimSpace(raw)), nil
	case KindBoolean:
		b, ok := parseBool(raw)
		if !ok {
			return nil, valueError(validation.CodeInvalid, fmt.Sprintf("%q value must be either true or false.", raw), nil)
		}

		return BooleanValue(b), nil
	case KindNumber:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return nil, numberError(raw, err)
		}

		return NumberValue(n), nil
	case KindDecimal:
		d, err := NewDecimal(strings.TrimSpace(raw))
		if err != nil {
			return nil, valueError(validation.CodeInvalid, "Enter a number.", nil)
		}

		return d, nil
	case KindDateTime:
		for _, layout := range dateTimeLayouts {
			if t, err := time.ParseInLocation(layout, strings.TrimSpace(raw), time.UTC); err == nil {
				return NewDateTime(t), nil
			}
		}

		return nil, valueError(validation.CodeInvalid, "Enter a valid date/time.", nil)
	case KindDate:
		t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, valueError(validation.CodeInvalid, "Enter a valid date.", nil)
		}

		return NewDate(t.Date()), nil
	case KindTime:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
				return NewTime(t.Hour(), t.Minute(), t.Second(), t.Nanosecond()), nil
			}
		}

		return nil, valueError(validation.CodeInvalid, "Enter a valid time.", nil)
	default:
		return nil, validation.Single("kind", validation.CodeInvalid,
			fmt.Sprintf("%q is not a valid kind.", string(k)), nil)
	}
}

// ParseJSONValue converts a JSON encoded value of kind k.
// Strings go through ParseValue, numbers and booleans are accepted for the
// matching kinds. A missing boolean defaults to true.
func ParseJSONValue(k Kind, raw json.RawMessage) (Value, *validation.Error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if k == KindBoolean {
			return BooleanValue(true), nil
		}

		return nil, valueError(validation.CodeRequired, "This field is required.", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, valueError(validation.CodeInvalid, "Enter a valid value.", nil)
	}

	switch v := decoded.(type) {
	case string:
		return ParseValue(k, v)
	case json.Number:
		if k == KindNumber || k == KindDecimal {
			return ParseValue(k, v.String())
		}
	case bool:
		if k == KindBoolean {
			return BooleanValue(v), nil
		}
	}

	return nil, valueError(validation.CodeInvalid,
		fmt.Sprintf("Enter a valid %s value.", k.DisplayName()), nil)
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "on":
		return true, true
	case "0", "f", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func numberError(raw string, err error) *validation.Error {
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(strings.TrimSpace(raw), "-") {
			return valueError(validation.CodeMinValue,
				fmt.Sprintf("Ensure this value is greater than or equal to %d.", int64(minInt32)),
				map[string]any{"limit_value": int64(minInt32)})
		}

		return valueError(validation.CodeMaxValue,
			fmt.Sprintf("Ensure this value is less than or equal to %d.", int64(maxInt32)),
			map[string]any{"limit_value": int64(maxInt32)})
	}

	return valueError(validation.CodeInvalid, "Enter a whole number.", nil)
}

const (
	minInt32 = -1 << 31
	maxInt32 = 1<<31 - 1
)

func valueError(code, message string, params map[string]any) *validation.Error {
	return validation.Single(valueField, code, message, params)
}

// String field rules. The json name makes failures land on the value field.
type (
	charRule struct {
		Value string `json:"value" validate:"required,max=140"`
	}
	textRule struct {
		Value string `json:"value" validate:"required"`
	}
	slugRule struct {
		Value string `json:"value" validate:"required,max=140,slug"`
	}
	urlRule struct {
		Value string `json:"value" validate:"required,max=2048,siteurl"`
	}
	emailRule struct {
		Value string `json:"value" validate:"required,max=254,email"`
	}
)

// validateValue applies the field rules of the value's kind.
func validateValue(v Value) *validation.Error {
	switch tv := v.(type) {
	case nil:
		return valueError(validation.CodeRequired, "This field is required.", nil)
	case CharValue:
		return validation.Struct(charRule{Value: string(tv)})
	case TextValue:
		return validation.Struct(textRule{Value: string(tv)})
	case SlugValue:
		return validation.Struct(slugRule{Value: string(tv)})
	case URLValue:
		return validation.Struct(urlRule{Value: string(tv)})
	case EmailValue:
		return validation.Struct(emailRule{Value: string(tv)})
	case DecimalValue:
		return validateDecimal(tv.Decimal)
	case DateTimeValue:
		if tv.IsZero() {
			return valueError(validation.CodeRequired, "This field is required.", nil)
		}
	case TimeValue:
		if tv.Duration < 0 || tv.Duration >= 24*time.Hour {
			return valueError(validation.CodeInvalid, "Enter a valid time.", nil)
		}
	}

	return nil
}

// validateDecimal checks total digits, decimal places and whole digits of d.
func validateDecimal(d decimal.Decimal) *validation.Error {
	coefficient := new(big.Int).Abs(d.Coefficient())
	exponent := int(d.Exponent())

	digitCount := len(coefficient.String())
	if coefficient.Sign() == 0 {
		digitCount = 0
	}

	var digits, decimals int

	if exponent >= 0 {
		digits = digitCount
		if digitCount > 0 {
			digits += exponent
		}
	} else {
		decimals = -exponent
		digits = max(digitCount, decimals)
	}

	wholeDigits := digits - decimals

	out := validation.New()

	if digits > MaxDecimalDigits {
		out.Add(valueField, validation.FieldError{
			Code:    validation.CodeMaxDigits,
			Message: fmt.Sprintf("Ensure that there are no more than %d digits in total.", MaxDecimalDigits),
			Params:  map[string]any{"max": MaxDecimalDigits, "value": d.String()},
		})
	}

	if decimals > MaxDecimalPlaces {
		out.Add(valueField, validation.FieldError{
			Code:    validation.CodeMaxDecimalPlaces,
			Message: fmt.Sprintf("Ensure that there are no more than %d decimal places.", MaxDecimalPlaces),
			Params:  map[string]any{"max": MaxDecimalPlaces, "value": d.String()},
		})
	}

	if wholeDigits > MaxDecimalDigits-MaxDecimalPlaces {
		out.Add(valueField, validation.FieldError{
			Code: validation.CodeMaxWholeDigits,
			Message: fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.",
				MaxDecimalDigits-MaxDecimalPlaces),
			Params: map[string]any{"max": MaxDecimalDigits - MaxDecimalPlaces, "value": d.String()},
		})
	}

	return out.OrNil()
}
