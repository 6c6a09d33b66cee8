package query

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// SchemaError is a query document that does not satisfy the #Query schema.
type SchemaError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Schema validates query documents against the embedded CUE definition.
//
// A cue.Context is not safe for concurrent use, so Schema serializes access.
type Schema struct {
	mu    sync.Mutex
	ctx   *cue.Context
	query cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", formatCUEError(err))
	}
	def := v.LookupPath(cue.ParsePath("#Query"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Query: %w", formatCUEError(err))
	}
	return &Schema{ctx: ctx, query: def}, nil
}

var defaultSchema = sync.OnceValues(NewSchema)

// ValidateFile checks a parsed CUE file (JSON and YAML documents both
// extract to one) against #Query.
func (s *Schema) ValidateFile(f *ast.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.BuildFile(f)
	return s.check(v)
}

// ValidateValue checks an already decoded Go value against #Query.
func (s *Schema) ValidateValue(doc any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.Encode(doc)
	return s.check(v)
}

func (s *Schema) check(v cue.Value) error {
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	unified := s.query.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "document"
	if path := first.Path(); len(path) > 0 {
		field = pathString(path)
	}
	format, args := first.Msg()
	se := &SchemaError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	if len(errs) > 1 {
		se.Message += fmt.Sprintf(" (and %d more errors)", len(errs)-1)
	}
	return se
}

func pathString(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}
