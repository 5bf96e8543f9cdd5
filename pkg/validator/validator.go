package validator

// Validator collects validation failures in the order the checks ran.
// Callers report the whole list at once, so the order must match the
// order rules are declared in.
type Validator struct {
	Errors []string
}

func New() *Validator {
	return &Validator{}
}

// Valid returns true if no checks failed.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError appends a failure message.
func (v *Validator) AddError(message string) {
	v.Errors = append(v.Errors, message)
}

// Check records message if ok is false.
func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}
