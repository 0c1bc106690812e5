package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// UpperOnlyLatin uppercases code points in the Latin-1 range and passes
// everything else through unchanged. The protocol applies this to both the
// account name and the password before hashing; the asymmetry for non-Latin
// input is mandated, existing stored digests depend on it.
func UpperOnlyLatin(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0xFF {
			return unicode.ToUpper(r)
		}
		return r
	}, s)
}

// CalculateShaPassHash derives the stored password digest:
//
//	sha256(hexUpper(sha256(login)) + ":" + password)
//
// encoded as lowercase hex. The two-stage construction is fixed; changing it
// would invalidate every digest already in the store.
func CalculateShaPassHash(login, password string) string {
	inner := sha256.Sum256([]byte(login))
	innerHex := strings.ToUpper(hex.EncodeToString(inner[:]))

	outer := sha256.New()
	outer.Write([]byte(innerHex))
	outer.Write([]byte(":"))
	outer.Write([]byte(password))

	return hex.EncodeToString(outer.Sum(nil))
}

// VerifyPassword reports whether the candidate credentials reproduce the
// stored digest. Malformed input simply fails the comparison; there is no
// error path.
func VerifyPassword(login, password, storedDigest string) bool {
	return CalculateShaPassHash(UpperOnlyLatin(login), UpperOnlyLatin(password)) == storedDigest
}
