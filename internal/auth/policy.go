package auth

import "unicode"

// Policy describes password strength requirements
type Policy struct {
	MinLength    int
	RequireUpper bool
	RequireLower bool
	RequireDigit bool
}

// DefaultPolicy is applied to registration passwords
var DefaultPolicy = Policy{
	MinLength:    8,
	RequireUpper: true,
	RequireLower: true,
	RequireDigit: true,
}

// Validate checks s against the policy and returns the failed rules
func (p Policy) Validate(s string) (bool, []string) {
	var reasons []string
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "password too short")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if p.RequireUpper && !hasUpper {
		reasons = append(reasons, "password needs an uppercase letter")
	}
	if p.RequireLower && !hasLower {
		reasons = append(reasons, "password needs a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		reasons = append(reasons, "password needs a digit")
	}
	return len(reasons) == 0, reasons
}
