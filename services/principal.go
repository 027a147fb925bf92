package services

import (
	"strings"

	"github.com/cppla/inkblog/apperr"
)

// Principal is the identity the auth provider asserted for the current
// request. Only ID and Email are required.
type Principal struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL string
}

// normalizePrincipal returns a trimmed copy of p, so every row written for
// the caller uses the same id.
func normalizePrincipal(p *Principal) (*Principal, error) {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return nil, apperr.Unauthorized("you must be logged in to access this resource")
	}
	return &Principal{
		ID:        strings.TrimSpace(p.ID),
		Email:     strings.TrimSpace(p.Email),
		FullName:  strings.TrimSpace(p.FullName),
		AvatarURL: strings.TrimSpace(p.AvatarURL),
	}, nil
}
