// Package validation checks decoded request payloads against their
// validate struct tags.
package validation

// Validator returns field errors keyed by json field name, or nil when s is
// valid.
type Validator interface {
	ValidateStruct(s any) map[string]string
}
