package errors

import "testing"

func TestValidateCaseID(t *testing.T) {
	valid := []string{"42", "CASE-2025-0031", "a1b2c3", "fraud_ring.7"}
	for _, id := range valid {
		if err := ValidateCaseID(id); err != nil {
			t.Errorf("ValidateCaseID(%q) = %v, want nil", id, err)
		}
	}

	invalid := map[string]string{
		"empty":           "",
		"traversal":       "../etc/passwd",
		"slash":           "cases/42",
		"backslash":       `cases\42`,
		"control char":    "case\x01",
		"null byte":       "case\x00id",
		"over max length": string(make([]byte, 129)),
	}
	for name, id := range invalid {
		if err := ValidateCaseID(id); err == nil {
			t.Errorf("%s: ValidateCaseID(%q) = nil, want error", name, id)
		} else if !Is(err, ErrCodeInvalidCase) {
			t.Errorf("%s: code = %v, want %v", name, GetCode(err), ErrCodeInvalidCase)
		}
	}
}
