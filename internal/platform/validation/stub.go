package validation

// StubValidator accepts every struct unless ValidateStructFunc says
// otherwise.
type StubValidator struct {
	ValidateStructFunc func(any) map[string]string
}

var _ Validator = (*StubValidator)(nil)

func (s *StubValidator) ValidateStruct(st any) map[string]string {
	if s.ValidateStructFunc == nil {
		return nil
	}
	return s.ValidateStructFunc(st)
}
