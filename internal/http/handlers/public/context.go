package public

import (
	handlershared "github.com/smartskincare/api/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithMsgs(c, "user_id", "Invalid user id", "Unexpected user id type")
}
