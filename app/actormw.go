package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorHeader carries the authenticated user id. Authentication itself lives
// in front of this service; every mutating lifecycle operation still needs
// the actor for the loanedBy/returnedBy/renewedBy audit stamps.
const ActorHeader = "X-Actor-ID"

func ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "missing " + ActorHeader + " header"})
			return
		}
		if _, err := uuid.Parse(actor); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, H{"error": "invalid actor id"})
			return
		}
		c.Set("actorID", actor)
		c.Next()
	}
}

// ActorID reads the id stored by ActorRequired.
func ActorID(c *gin.Context) string {
	v, _ := c.Get("actorID")
	id, _ := v.(string)
	return id
}
