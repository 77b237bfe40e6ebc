package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/291e/bogofit-verify/internal/http/handlers"
	"github.com/291e/bogofit-verify/internal/http/middleware"
)

func BuildRouter(eh *handlers.EmailHandlers, ph *handlers.PhoneHandlers, dh *handlers.DebugHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	v := r.Group("/verification")
	v.POST("/email/send", eh.SendCode)
	v.POST("/email/verify", eh.VerifyCode)
	v.POST("/phone/send", ph.SendCode)
	v.POST("/phone/verify", ph.VerifyCode)

	// Flows mutating an existing account require an authenticated owner.
	owned := v.Group("/").Use(jwtmw.WithJWT())
	owned.POST("/email-change/send", eh.SendEmailChange)
	owned.POST("/email-change/verify", eh.VerifyEmailChange)
	owned.POST("/account-deletion/send", eh.SendAccountDeletion)
	owned.POST("/account-deletion/verify", eh.VerifyAccountDeletion)
	owned.POST("/profile-update/send", eh.SendProfileUpdate)
	owned.POST("/profile-update/verify", eh.VerifyProfileUpdate)

	adm := r.Group("/admin").Use(jwtmw.WithJWT(), jwtmw.WithAdmin())
	adm.GET("/challenges", dh.List)

	return r
}
