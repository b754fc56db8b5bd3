package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartskincare/api/internal/cache"
	"github.com/smartskincare/api/internal/config"
	adminhandlers "github.com/smartskincare/api/internal/http/handlers/admin"
	publichandlers "github.com/smartskincare/api/internal/http/handlers/public"
	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/provider"
)

// SetupRouter builds the HTTP engine and mounts every route group.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if logger.L == nil {
		logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}

	r := gin.New()

	pub := publichandlers.New(c)
	adm := adminhandlers.New(c)

	redisPrefix := cfg.Redis.Prefix
	if redisPrefix == "" {
		redisPrefix = "smartskincare"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "Too many login attempts, please try again later",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "Too many login attempts, please try again later",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.L))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/products", pub.GetProducts)
			public.GET("/products/:id", pub.GetProduct)
			public.GET("/categories", pub.GetCategories)
			public.GET("/availability", pub.GetAvailability)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", pub.UserRegister)
			auth.POST("/login",
				RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")),
				pub.UserLogin,
			)
			auth.POST("/forgot-password", pub.UserForgotPassword)
			auth.POST("/reset-password", pub.UserResetPassword)
		}

		member := apiV1.Group("")
		member.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			member.GET("/me", pub.GetCurrentUser)
			member.PUT("/me/profile", pub.UpdateUserProfile)
			member.PUT("/me/password", pub.ChangeUserPassword)
			member.PUT("/me/address", pub.UpdateAddress)
			member.PUT("/me/billing-card", pub.UpdateBillingCard)

			member.GET("/cart", pub.GetCart)
			member.POST("/cart/items", pub.AddCartItem)
			member.POST("/cart/items/:product_id/increment", pub.IncrementCartItem)
			member.POST("/cart/items/:product_id/decrement", pub.DecrementCartItem)
			member.PUT("/cart/items/:product_id", pub.SetCartItemQuantity)
			member.DELETE("/cart/items/:product_id", pub.DeleteCartItem)
			member.DELETE("/cart", pub.ClearCart)

			member.POST("/checkout/summary", pub.BuildCheckoutSummary)
			member.POST("/checkout/confirm", pub.ConfirmCheckout)
			member.GET("/checkout/confirmation/:order_no", pub.GetCheckoutConfirmation)

			member.GET("/orders", pub.ListOrders)
			member.GET("/orders/:order_no", pub.GetOrderByOrderNo)

			member.GET("/appointments", pub.ListMyAppointments)
			member.POST("/appointments", pub.BookAppointment)
			member.POST("/appointments/:id/cancel", pub.CancelAppointment)
			member.PUT("/appointments/:id/reschedule", pub.RescheduleAppointment)

			member.POST("/recommendations", pub.Recommend)
			member.POST("/skin-analysis", pub.AnalyzeSkin)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login",
				RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP),
				adm.AdminLogin,
			)

			authorized := admin.Group("")
			authorized.Use(
				JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo),
				AdminRBACMiddleware(c.AuthzService),
			)
			{
				authorized.PUT("/password", adm.UpdateAdminPassword)
				authorized.GET("/dashboard", adm.GetDashboardOverview)

				authorized.GET("/products", adm.GetAdminProducts)
				authorized.GET("/products/categories", adm.GetAdminCategories)
				authorized.GET("/products/:id", adm.GetAdminProduct)
				authorized.POST("/products", adm.CreateProduct)
				authorized.PUT("/products/:id", adm.UpdateProduct)
				authorized.DELETE("/products/:id", adm.DeleteProduct)

				authorized.GET("/users", adm.GetAdminUsers)
				authorized.GET("/users/:id", adm.GetAdminUser)
				authorized.PATCH("/users/:id/membership", adm.SetMembershipStatus)
				authorized.DELETE("/users/:id", adm.DeleteAdminUser)

				authorized.GET("/orders", adm.GetAdminOrders)
				authorized.GET("/orders/:order_no", adm.GetAdminOrder)
				authorized.PATCH("/orders/:order_no/status", adm.UpdateOrderStatus)

				authorized.GET("/appointments", adm.GetAdminAppointments)
				authorized.POST("/appointments/:id/cancel", adm.CancelAdminAppointment)
				authorized.POST("/appointments/:id/confirm", adm.ConfirmAdminAppointment)
				authorized.GET("/availability", adm.GetAdminAvailability)
				authorized.PUT("/availability/:date", adm.SetAdminAvailability)
				authorized.PATCH("/availability/:date", adm.ToggleAdminSlot)

				authzGroup := authorized.Group("/authz")
				{
					authzGroup.GET("/me", adm.GetAuthzMe)
					authzGroup.GET("/roles", adm.ListAuthzRoles)
					authzGroup.POST("/roles", adm.CreateAuthzRole)
					authzGroup.DELETE("/roles/:role", adm.DeleteAuthzRole)
					authzGroup.GET("/roles/:role/policies", adm.GetAuthzRolePolicies)
					authzGroup.POST("/policies", adm.GrantAuthzPolicy)
					authzGroup.DELETE("/policies", adm.RevokeAuthzPolicy)
					authzGroup.GET("/admins", adm.ListAuthzAdmins)
					authzGroup.GET("/admins/:id/roles", adm.GetAuthzAdminRoles)
					authzGroup.PUT("/admins/:id/roles", adm.SetAuthzAdminRoles)
					authzGroup.GET("/permissions/catalog", func(ctx *gin.Context) {
						response.Success(ctx, buildAdminPermissionCatalog(r))
					})
				}
			}
		}
	}

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog lists every protected back-office route
// as a grantable (object, action) pair.
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	seen := make(map[string]struct{})
	items := make([]adminPermissionCatalogItem, 0, 32)

	for _, route := range engine.Routes() {
		if !strings.HasPrefix(route.Path, "/api/v1/admin/") {
			continue
		}
		if route.Path == "/api/v1/admin/login" {
			continue
		}
		if route.Method == "OPTIONS" || route.Method == "HEAD" {
			continue
		}

		object := strings.TrimPrefix(route.Path, "/api/v1")
		key := fmt.Sprintf("%s:%s", route.Method, object)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}

		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     route.Method,
			Object:     object,
			Permission: key,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module != items[j].Module {
			return items[i].Module < items[j].Module
		}
		if items[i].Object != items[j].Object {
			return items[i].Object < items[j].Object
		}
		return items[i].Method < items[j].Method
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	segments := strings.Split(strings.Trim(object, "/"), "/")
	if len(segments) < 2 {
		return "admin"
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
