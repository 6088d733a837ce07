package csvimport

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Decoder turns raw CSV rows into tagged row structs. A struct field is bound
// to a column through its `csv` tag; `csv:"Name,optional"` marks a column that
// may be absent from the header. Cell rules are `validate` tags.
type Decoder struct {
	validate    *validator.Validate
	dateLayouts []string
	currency    valueobject.Currency
	delimiter   rune
	maxErrors   int
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithMaxErrors caps the errors kept per sheet
func WithMaxErrors(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxErrors = n
	}
}

// WithSeparator sets the CSV delimiter
func WithSeparator(r rune) DecoderOption {
	return func(d *Decoder) {
		d.delimiter = r
	}
}

// NewDecoder creates a decoder for dates in dateLayout and amounts in currency.
// Dates without zero padding ("1/2/2024") are also accepted.
func NewDecoder(dateLayout string, currency valueobject.Currency, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		dateLayouts: []string{dateLayout, "2/1/2006"},
		currency:    currency,
		delimiter:   ',',
		maxErrors:   100,
	}
	for _, opt := range opts {
		opt(d)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _ := parseColumnTag(f.Tag.Get("csv"))
		return name
	})
	_ = v.RegisterValidation("sheetdate", func(fl validator.FieldLevel) bool {
		_, err := d.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		m, err := d.ParseMoney(fl.Field().String())
		return err == nil && !m.IsNegative()
	})
	_ = v.RegisterValidation("sheetrole", func(fl validator.FieldLevel) bool {
		_, ok := RoleFromSheet(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("sheetattendance", func(fl validator.FieldLevel) bool {
		_, ok := AttendanceFromSheet(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("sheetcategory", func(fl validator.FieldLevel) bool {
		_, ok := CategoryFromSheet(fl.Field().String())
		return ok
	})
	d.validate = v
	return d
}

// ParseDate parses a sheet date
func (d *Decoder) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range d.dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseMoney parses a sheet amount such as "450", "1,200.50" or "$ 300".
// Amounts finer than a cent are rejected.
func (d *Decoder) ParseMoney(s string) (valueobject.Money, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return valueobject.Zero(d.currency), nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewExactMoney(amount, d.currency)
}

// Decoded is a validated row struct and the line it came from
type Decoded[T any] struct {
	Line  int
	Value T
}

// ReadSheet parses a CSV export into rows of T. Header problems are returned
// as an error; cell problems are collected per row and the offending rows are
// left out of the result.
func ReadSheet[T any](d *Decoder, sheet string, r io.Reader) ([]Decoded[T], *ErrorCollection, error) {
	columns, required, err := columnsOf[T]()
	if err != nil {
		return nil, nil, err
	}

	parser, err := NewCSVParser(r, WithDelimiter(d.delimiter))
	if err != nil {
		return nil, nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, nil, err
	}
	if missing := parser.MissingHeaders(required); len(missing) > 0 {
		return nil, nil, &MissingColumnsError{Sheet: sheet, Columns: missing}
	}

	errs := NewErrorCollection(d.maxErrors)
	var out []Decoded[T]
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if rowErr, ok := err.(RowError); ok {
			errs.Add(rowErr)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if row.IsEmpty() {
			continue
		}

		var value T
		bind(&value, columns, row)
		if d.check(row.LineNumber, &value, errs) {
			out = append(out, Decoded[T]{Line: row.LineNumber, Value: value})
		}
	}
	return out, errs, nil
}

func (d *Decoder) check(line int, value any, errs *ErrorCollection) bool {
	err := d.validate.Struct(value)
	if err == nil {
		return true
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(RowError{Row: line, Code: ErrCodeImportInvalidValue, Message: err.Error()})
		return false
	}
	for _, fe := range fieldErrs {
		code, msg := describe(fe)
		errs.Add(RowError{
			Row:     line,
			Column:  fe.Field(),
			Code:    code,
			Message: msg,
			Value:   fmt.Sprint(fe.Value()),
		})
	}
	return false
}

func describe(fe validator.FieldError) (string, string) {
	switch fe.Tag() {
	case "required":
		return ErrCodeImportRequiredField, fmt.Sprintf("field '%s' is required", fe.Field())
	case "number", "numeric":
		return ErrCodeImportInvalidType, "expected a whole number"
	case "money":
		return ErrCodeImportInvalidType, "expected a non-negative amount with at most two decimals"
	case "sheetdate":
		return ErrCodeImportInvalidFormat, "expected a date as dd/mm/yyyy"
	case "sheetrole", "sheetattendance", "sheetcategory":
		return ErrCodeImportInvalidValue, "value is not recognised"
	case "email":
		return ErrCodeImportInvalidFormat, "expected an email address"
	case "max", "min":
		return ErrCodeImportInvalidLength, fmt.Sprintf("length must satisfy %s=%s", fe.Tag(), fe.Param())
	case "oneof":
		return ErrCodeImportInvalidValue, fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return ErrCodeImportInvalidValue, fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

type column struct {
	index int
	name  string
}

func parseColumnTag(tag string) (name string, optional bool) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "optional" {
			optional = true
		}
	}
	return name, optional
}

func columnsOf[T any]() ([]column, []string, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("sheet row type %s is not a struct", t)
	}
	var cols []column
	var required []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, optional := parseColumnTag(f.Tag.Get("csv"))
		if name == "" || name == "-" {
			continue
		}
		if f.Type.Kind() != reflect.String {
			return nil, nil, fmt.Errorf("column %s of %s must be a string field", name, t)
		}
		cols = append(cols, column{index: i, name: name})
		if !optional {
			required = append(required, name)
		}
	}
	return cols, required, nil
}

func bind[T any](dst *T, cols []column, row *Row) {
	v := reflect.ValueOf(dst).Elem()
	for _, c := range cols {
		v.Field(c.index).SetString(row.Get(c.name))
	}
}
