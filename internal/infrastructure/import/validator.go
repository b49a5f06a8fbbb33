package csvimport

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the expected scalar type of a CSV column.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
)

const defaultDateFormat = "2006-01-02"

// FieldRule is the full set of checks applied to one column.
type FieldRule struct {
	Column     string
	Type       FieldType
	Required   bool
	MinLength  int
	MaxLength  int
	MinValue   *decimal.Decimal
	MaxValue   *decimal.Decimal
	DateFormat string
	Unique     bool
	Reference  string
	CustomFunc func(value string) error
}

// FieldRuleBuilder assembles a FieldRule fluently.
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column. The column defaults to a
// string with dates expected as YYYY-MM-DD.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{
		Column:     column,
		Type:       TypeString,
		DateFormat: defaultDateFormat,
	}}
}

// Required rejects empty cells in this column.
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// String expects free text.
func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

// Int expects a whole number.
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal expects an exact decimal number, suitable for money.
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date expects a date in the configured format.
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// DateFormat overrides the expected date layout.
func (b *FieldRuleBuilder) DateFormat(layout string) *FieldRuleBuilder {
	b.rule.DateFormat = layout
	return b
}

// MinLength sets the minimum cell length in bytes.
func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

// MaxLength sets the maximum cell length in bytes.
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// MinValue sets the lower bound for numeric columns.
func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// MaxValue sets the upper bound for numeric columns.
func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Unique rejects a value that repeats within the file, and marks the
// column for a database uniqueness check.
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Reference marks the column as a lookup against existing records,
// e.g. an academic year that must already be registered.
func (b *FieldRuleBuilder) Reference(refType string) *FieldRuleBuilder {
	b.rule.Reference = refType
	return b
}

// Custom attaches an extra check run after the built-in ones.
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the finished rule.
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies FieldRules row by row, tracking in-file
// duplicates for columns marked Unique.
type FieldValidator struct {
	rules     []FieldRule
	firstSeen map[string]map[string]int
	errors    *ErrorCollection
}

// NewFieldValidator builds a validator for the given rules.
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:     rules,
		firstSeen: make(map[string]map[string]int),
		errors:    NewErrorCollection(maxErrors),
	}
}

// ValidateRow checks every rule against the row and reports whether
// the row is clean. Errors land in the validator's collection.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	clean := true

	for _, rule := range v.rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				v.errors.addRequired(row.LineNumber, rule.Column)
				clean = false
			}
			// Optional empty cells skip every other check.
			continue
		}

		if err := checkType(value, rule.Type, rule.DateFormat); err != nil {
			v.errors.addType(row.LineNumber, rule.Column, string(rule.Type), value)
			clean = false
			continue
		}

		if (rule.MinLength > 0 && len(value) < rule.MinLength) ||
			(rule.MaxLength > 0 && len(value) > rule.MaxLength) {
			v.errors.addLength(row.LineNumber, rule.Column, rule.MinLength, rule.MaxLength)
			clean = false
		}

		if rule.Type == TypeInt || rule.Type == TypeDecimal {
			if reason := checkBounds(value, rule.MinValue, rule.MaxValue); reason != "" {
				v.errors.addRange(row.LineNumber, rule.Column, value, reason)
				clean = false
			}
		}

		if rule.Unique {
			seen := v.firstSeen[rule.Column]
			if seen == nil {
				seen = make(map[string]int)
				v.firstSeen[rule.Column] = seen
			}
			if firstRow, dup := seen[value]; dup {
				v.errors.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeImportDuplicateInFile,
					fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, firstRow), value))
				clean = false
			} else {
				seen[value] = row.LineNumber
			}
		}

		if rule.CustomFunc != nil {
			if err := rule.CustomFunc(value); err != nil {
				v.errors.Add(NewRowError(row.LineNumber, rule.Column, ErrCodeImportValidation, err.Error()))
				clean = false
			}
		}
	}

	return clean
}

// Errors exposes the collected row errors.
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

func checkType(value string, t FieldType, dateFormat string) error {
	switch t {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(dateFormat, value)
		return err
	}
	return nil
}

// checkBounds returns a human-readable reason when value falls outside
// [min, max], or "" when it is in range.
func checkBounds(value string, min, max *decimal.Decimal) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "not a number"
	}
	if min != nil && d.LessThan(*min) {
		return fmt.Sprintf("value must be at least %s", min.String())
	}
	if max != nil && d.GreaterThan(*max) {
		return fmt.Sprintf("value must be at most %s", max.String())
	}
	return ""
}

// ReferenceValidator checks cells that point at existing records. Each
// distinct value is looked up once and the answer is memoized, so a
// file with one academic year in 5000 rows costs one query.
type ReferenceValidator struct {
	lookup func(refType, value string) (bool, error)
	known  map[string]map[string]bool
	errors *ErrorCollection
}

// NewReferenceValidator builds a validator around the given lookup.
func NewReferenceValidator(lookup func(refType, value string) (bool, error), maxErrors int) *ReferenceValidator {
	return &ReferenceValidator{
		lookup: lookup,
		known:  make(map[string]map[string]bool),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateReference reports whether the referenced record exists.
// Empty cells pass, the Required rule owns that case.
func (v *ReferenceValidator) ValidateReference(row int, column, refType, value string) bool {
	if value == "" {
		return true
	}

	answers := v.known[refType]
	if answers == nil {
		answers = make(map[string]bool)
		v.known[refType] = answers
	}

	exists, cached := answers[value]
	if !cached {
		var err error
		exists, err = v.lookup(refType, value)
		if err != nil {
			v.errors.Add(NewRowError(row, column, ErrCodeImportValidation,
				fmt.Sprintf("error checking %s reference: %v", refType, err)))
			return false
		}
		answers[value] = exists
	}

	if !exists {
		v.errors.addReference(row, column, value, refType)
		return false
	}
	return true
}

// Errors exposes the collected row errors.
func (v *ReferenceValidator) Errors() *ErrorCollection {
	return v.errors
}

// UniquenessValidator checks Unique columns against already stored
// records, catching rows that would collide with the database rather
// than with each other.
type UniquenessValidator struct {
	lookup func(entityType, field, value string) (bool, error)
	errors *ErrorCollection
}

// NewUniquenessValidator builds a validator around the given lookup.
func NewUniquenessValidator(lookup func(entityType, field, value string) (bool, error), maxErrors int) *UniquenessValidator {
	return &UniquenessValidator{
		lookup: lookup,
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateUnique reports whether the value is absent from storage.
func (v *UniquenessValidator) ValidateUnique(row int, column, entityType, value string) bool {
	if value == "" {
		return true
	}

	taken, err := v.lookup(entityType, column, value)
	if err != nil {
		v.errors.Add(NewRowError(row, column, ErrCodeImportValidation,
			fmt.Sprintf("error checking uniqueness: %v", err)))
		return false
	}
	if taken {
		v.errors.addDuplicateInDB(row, column, value)
		return false
	}
	return true
}

// Errors exposes the collected row errors.
func (v *UniquenessValidator) Errors() *ErrorCollection {
	return v.errors
}
