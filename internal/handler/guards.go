package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/model"
)

// Guards carries the route-level middleware domain handlers attach while
// registering routes. A zero Guards lets every request through.
type Guards struct {
	Require func(model.Permission) gin.HandlerFunc
	Audit   func(entityType string) gin.HandlerFunc
	// Throttle guards credential endpoints such as login and password reset.
	Throttle gin.HandlerFunc
}

func (g Guards) Permission(perm model.Permission) gin.HandlerFunc {
	if g.Require == nil {
		return pass
	}
	return g.Require(perm)
}

func (g Guards) Audited(entityType string) gin.HandlerFunc {
	if g.Audit == nil {
		return pass
	}
	return g.Audit(entityType)
}

func (g Guards) Throttled() gin.HandlerFunc {
	if g.Throttle == nil {
		return pass
	}
	return g.Throttle
}

func pass(c *gin.Context) { c.Next() }

// SendFile writes data as a downloadable attachment.
func SendFile(c *gin.Context, contentType, name string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, contentType, data)
}
