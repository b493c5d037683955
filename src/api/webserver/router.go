package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sauti-platform/sauti/src/api/config"
	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/sauti-platform/sauti/src/queue"
	"gorm.io/gorm"
)

func New(cfg config.Config, db *gorm.DB, q *queue.Queue) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	attachRoutes(r, cfg, db, q)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, q *queue.Queue) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://sauti.go.ke"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(db, []byte(cfg.JWTSecret))
	billsH := NewBills(db)
	subsH := NewSubmissions(db, q)
	engH := NewEngagements(db, q)
	analyticsH := NewAnalytics(db)
	notifH := NewNotifications(db)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", authH.Register)
		v1.POST("/auth/login", authH.Login)

		v1.GET("/bills", billsH.List)
		v1.GET("/bills/:id", billsH.Get)
		v1.GET("/bills/:id/submissions", subsH.ListForBill)
		v1.GET("/bills/:id/analytics", analyticsH.ForBill)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		{
			secured.POST("/bills/:id/follow", billsH.Follow)
			secured.DELETE("/bills/:id/follow", billsH.Unfollow)
			secured.POST("/submissions", subsH.Create)
			secured.POST("/engagements", engH.Create)
			secured.GET("/engagements", engH.List)
			secured.GET("/notifications", notifH.List)
			secured.POST("/notifications/:id/read", notifH.MarkRead)

			clerk := secured.Group("")
			clerk.Use(RequireRole(types.RoleClerk, types.RoleAdmin))
			{
				clerk.POST("/bills", billsH.Create)
				clerk.PUT("/bills/:id/status", billsH.SetStatus)
				clerk.POST("/bills/:id/clauses", billsH.AddClause)
			}

			admin := secured.Group("/admin")
			admin.Use(RequireRole(types.RoleAdmin))
			{
				adminH := NewAdmin(q)
				admin.GET("/jobs/dead", adminH.DeadJobs)
			}
		}
	}
}
