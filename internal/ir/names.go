package ir

import "golang.org/x/text/unicode/norm"

// CanonicalName normalizes a symbol name to NFC so that visually identical
// spellings resolve to one symbol.
func CanonicalName(name string) string {
	return norm.NFC.String(name)
}
