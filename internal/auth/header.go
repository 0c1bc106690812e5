package auth

import (
	"encoding/base64"
	"strings"
)

const basicPrefix = "Basic "

// ExtractTicket pulls the login ticket out of an Authorization header of the
// form "Basic base64(ticket[:anything])". Only the part before the first
// colon is the ticket; there is no password at this layer. Returns "" for a
// missing or undecodable header.
func ExtractTicket(authorization string) string {
	if authorization == "" {
		return ""
	}

	value := strings.TrimPrefix(authorization, basicPrefix)
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return ""
	}

	ticket := string(decoded)
	if i := strings.IndexByte(ticket, ':'); i >= 0 {
		ticket = ticket[:i]
	}
	return ticket
}
