package models

// MasterPasswordPolicyData holds the constraint fields of a MasterPassword
// policy. The zero value is all-permissive: nil minimums and false flags
// impose nothing, so it is the identity element for Combine.
type MasterPasswordPolicyData struct {
	MinComplexity  *int `json:"min_complexity,omitempty"`
	MinLength      *int `json:"min_length,omitempty"`
	RequireUpper   bool `json:"require_upper"`
	RequireLower   bool `json:"require_lower"`
	RequireNumbers bool `json:"require_numbers"`
	RequireSpecial bool `json:"require_special"`
	EnforceOnLogin bool `json:"enforce_on_login"`
}

// Combine folds other into d keeping the strictest value per field:
// numeric minimums take the maximum, require flags are OR-ed. The merge is
// commutative and associative, so organization order never matters.
func (d *MasterPasswordPolicyData) Combine(other *MasterPasswordPolicyData) {
	if other == nil {
		return
	}

	d.MinComplexity = maxOf(d.MinComplexity, other.MinComplexity)
	d.MinLength = maxOf(d.MinLength, other.MinLength)
	d.RequireUpper = d.RequireUpper || other.RequireUpper
	d.RequireLower = d.RequireLower || other.RequireLower
	d.RequireNumbers = d.RequireNumbers || other.RequireNumbers
	d.RequireSpecial = d.RequireSpecial || other.RequireSpecial
	d.EnforceOnLogin = d.EnforceOnLogin || other.EnforceOnLogin
}

func maxOf(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil || *a >= *b {
		return a
	}
	return b
}
