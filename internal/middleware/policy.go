package middleware

import (
	"learnhub_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// Policy names who may reach a route. Ownership of the addressed resource is
// decided later by the service layer.
type Policy int

const (
	Public Policy = iota
	SignedIn
	StudentOnly
	EducatorOnly
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case SignedIn:
		return "signed-in"
	case StudentOnly:
		return "student"
	case EducatorOnly:
		return "educator"
	}
	return "unknown"
}

// Guards is the middleware needed to enforce policies.
type Guards struct {
	Tokens TokenParser
	// CSRF is nil when CSRF checking is disabled.
	CSRF CSRFValidator
}

// Chain returns the handlers enforcing p, in order: authentication, role,
// then CSRF for mutations.
func (g Guards) Chain(p Policy) []gin.HandlerFunc {
	if p == Public {
		return nil
	}
	chain := []gin.HandlerFunc{AuthMiddleware(g.Tokens)}
	switch p {
	case StudentOnly:
		chain = append(chain, RoleMiddleware(model.Student))
	case EducatorOnly:
		chain = append(chain, RoleMiddleware(model.Educator))
	}
	if g.CSRF != nil {
		chain = append(chain, CSRFMiddleware(g.CSRF))
	}
	return chain
}
