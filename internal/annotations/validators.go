package annotations

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
)

// ValidateDecodePolicy accepts the supported on_decode_error values
func ValidateDecodePolicy(v string) error {
	if v != "panic" && v != "return" {
		return fmt.Errorf("must be 'panic' or 'return', got '%s'", v)
	}
	return nil
}

// ValidateIdentifier accepts a Go identifier
func ValidateIdentifier(v string) error {
	if !token.IsIdentifier(v) {
		return fmt.Errorf("'%s' is not a Go identifier", v)
	}
	return nil
}

// ValidateCommandPrefix rejects prefixes that cannot appear in a command name
func ValidateCommandPrefix(v string) error {
	if strings.IndexFunc(v, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return fmt.Errorf("command prefix '%s' contains whitespace", v)
	}
	return nil
}

// DecodePolicyParameterSpec returns the shared on_decode_error specification
func DecodePolicyParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Description: "Generated behavior when a bridge value cannot be decoded: 'panic' (default) or 'return'",
		Validator:   ValidateDecodePolicy,
	}
}
