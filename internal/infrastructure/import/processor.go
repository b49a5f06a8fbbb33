package csvimport

import (
	"context"
	"io"
)

// ImportProcessor runs the validation pass over an uploaded file:
// parse, apply field rules, check references and database uniqueness,
// and collect the rows that may be imported.
type ImportProcessor struct {
	maxRows         int
	maxErrors       int
	previewRows     int
	referenceLookup func(refType, value string) (bool, error)
	uniqueLookup    func(entityType, field, value string) (bool, error)
}

// ProcessorOption configures an ImportProcessor.
type ProcessorOption func(*ImportProcessor)

// WithMaxRows caps how many data rows a file may carry.
func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxRows = rows
	}
}

// WithMaxErrors caps how many row errors are kept in the result.
func WithMaxErrors(n int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxErrors = n
	}
}

// WithReferenceLookup wires the existence check for Reference columns.
func WithReferenceLookup(fn func(refType, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) {
		p.referenceLookup = fn
	}
}

// WithUniqueLookup wires the database collision check for Unique
// columns.
func WithUniqueLookup(fn func(entityType, field, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) {
		p.uniqueLookup = fn
	}
}

// NewImportProcessor builds a processor with sane defaults: 100k row
// cap, 100 stored errors, 5 preview rows.
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxRows:     100000,
		maxErrors:   100,
		previewRows: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks the file against the rules without writing anything.
// The session moves to StateValidated on a clean file, StateFailed when
// any row is rejected. Valid rows come back on the result for the
// import step.
func (p *ImportProcessor) Validate(ctx context.Context, session *ImportSession, reader io.Reader, rules []FieldRule) (*ValidationResult, error) {
	session.UpdateState(StateValidating)

	parser, err := NewCSVParser(reader)
	if err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}

	fields := NewFieldValidator(rules, p.maxErrors)
	var refs *ReferenceValidator
	if p.referenceLookup != nil {
		refs = NewReferenceValidator(p.referenceLookup, p.maxErrors)
	}
	var unique *UniquenessValidator
	if p.uniqueLookup != nil {
		unique = NewUniquenessValidator(p.uniqueLookup, p.maxErrors)
	}

	parseErrors := NewErrorCollection(p.maxErrors)
	result := &ValidationResult{
		Errors:  make([]RowError, 0),
		Preview: make([]map[string]any, 0),
	}

	for {
		select {
		case <-ctx.Done():
			session.UpdateState(StateCancelled)
			return nil, ctx.Err()
		default:
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			result.ErrorRows++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		result.TotalRows++
		if result.TotalRows > p.maxRows {
			parseErrors.Add(NewRowError(row.LineNumber, "", ErrCodeImportValidation,
				"exceeded maximum number of rows"))
			break
		}

		ok := fields.ValidateRow(row)
		if refs != nil {
			for _, rule := range rules {
				if rule.Reference == "" {
					continue
				}
				if !refs.ValidateReference(row.LineNumber, rule.Column, rule.Reference, row.Get(rule.Column)) {
					ok = false
				}
			}
		}
		if unique != nil {
			for _, rule := range rules {
				if !rule.Unique {
					continue
				}
				if !unique.ValidateUnique(row.LineNumber, rule.Column, string(session.EntityType), row.Get(rule.Column)) {
					ok = false
				}
			}
		}

		if !ok {
			result.ErrorRows++
			continue
		}

		result.ValidRows++
		result.Rows = append(result.Rows, row)
		if len(result.Preview) < p.previewRows {
			preview := make(map[string]any, len(row.Data))
			for k, v := range row.Data {
				preview[k] = v
			}
			result.Preview = append(result.Preview, preview)
		}
	}

	merged := NewErrorCollection(p.maxErrors)
	for _, collected := range []*ErrorCollection{parseErrors, fields.Errors()} {
		for _, e := range collected.Errors() {
			merged.Add(e)
		}
	}
	if refs != nil {
		for _, e := range refs.Errors().Errors() {
			merged.Add(e)
		}
	}
	if unique != nil {
		for _, e := range unique.Errors().Errors() {
			merged.Add(e)
		}
	}
	result.Errors = merged.Errors()
	result.IsTruncated = merged.IsTruncated()
	result.TotalErrors = merged.TotalCount()

	session.RecordValidation(result)
	if result.ErrorRows > 0 {
		session.UpdateState(StateFailed)
	} else {
		session.UpdateState(StateValidated)
	}

	return result, nil
}
