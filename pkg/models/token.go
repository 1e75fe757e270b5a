package models

import "regexp"

// TokenFamily is the role prefix of a field reference id.
type TokenFamily byte

const (
	TokenFamilyUser   TokenFamily = 'u'
	TokenFamilySystem TokenFamily = 's'
	TokenFamilyData   TokenFamily = 'd'
)

// TokenFamilies lists the recognised families in scan order.
var TokenFamilies = []TokenFamily{TokenFamilyUser, TokenFamilySystem, TokenFamilyData}

var tokenIDPattern = regexp.MustCompile(`^[sud]\d+$`)

// IsTokenID reports whether id matches the token grammar exactly.
func IsTokenID(id string) bool {
	return tokenIDPattern.MatchString(id)
}

// TokenText renders id in canonical form.
func TokenText(id string) string {
	return "${" + id + "}"
}
