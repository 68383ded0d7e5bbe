package service

import "strings"

const bearerPrefix = "Bearer "

// AuthGateway turns an Authorization header into an account id. It only
// proves the token was validly issued; the account may since have vanished.
type AuthGateway struct {
	Credentials *CredentialService
}

// Resolve strips the exact, case-sensitive "Bearer " prefix and parses the
// remainder. It never fails loudly: any problem yields false.
func (g *AuthGateway) Resolve(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return g.Credentials.ParseToken(token)
}
