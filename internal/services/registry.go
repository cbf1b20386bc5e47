package services

import (
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
	"github.com/fyrsmithlabs/rfqd/internal/semantic"
	"github.com/fyrsmithlabs/rfqd/internal/validation"
)

// Registry provides access to the wired rfqd components.
type Registry interface {
	Parser() *rfq.Parser
	Validator() *validation.Validator
	Extractor() *semantic.Extractor
}

// Options configures the registry with component instances.
type Options struct {
	Parser    *rfq.Parser
	Validator *validation.Validator
	Extractor *semantic.Extractor
}

type registry struct {
	parser    *rfq.Parser
	validator *validation.Validator
	extractor *semantic.Extractor
}

// NewRegistry creates a new registry.
func NewRegistry(opts Options) Registry {
	return &registry{
		parser:    opts.Parser,
		validator: opts.Validator,
		extractor: opts.Extractor,
	}
}

func (r *registry) Parser() *rfq.Parser              { return r.parser }
func (r *registry) Validator() *validation.Validator { return r.validator }

// Extractor is nil when the parser runs pattern-only.
func (r *registry) Extractor() *semantic.Extractor { return r.extractor }
