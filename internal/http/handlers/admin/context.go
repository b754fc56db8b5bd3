package admin

import (
	handlershared "github.com/smartskincare/api/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithMsgs(c, "admin_id", "Invalid admin id", "Unexpected admin id type")
}
