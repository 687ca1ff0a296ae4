package router

import (
	authsvc "travel-backend/internal/application/auth"
	citysvc "travel-backend/internal/application/cities"
	emailsvc "travel-backend/internal/application/emails"
	friendsvc "travel-backend/internal/application/friends"
	invitesvc "travel-backend/internal/application/travelinvites"
	travelsvc "travel-backend/internal/application/travels"
	uploadsvc "travel-backend/internal/application/uploads"
	usersvc "travel-backend/internal/application/user"
	"travel-backend/internal/config"
	"travel-backend/internal/infrastructure/database"
	authhandler "travel-backend/internal/interfaces/handlers/auth"
	cityhandler "travel-backend/internal/interfaces/handlers/cities"
	friendhandler "travel-backend/internal/interfaces/handlers/friends"
	healthhandler "travel-backend/internal/interfaces/handlers/health"
	invitehandler "travel-backend/internal/interfaces/handlers/travelinvites"
	travelhandler "travel-backend/internal/interfaces/handlers/travels"
	uploadhandler "travel-backend/internal/interfaces/handlers/uploads"
	userhandler "travel-backend/internal/interfaces/handlers/user"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app: global middleware, services and the route table.
// The database and redis clients are returned so the caller can verify and close them.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		log.Info().Msg("database migrated")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		FrontendOrigin: cfg.InviteBaseURL,
		AllowMethods:   cfg.CORSAllowMethods,
		AllowHeaders:   cfg.CORSAllowHeaders,
		ExposeHeaders:  cfg.CORSExposeHeaders,
	}))
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Metrics())

	hh := &healthhandler.Handlers{Rdb: rdb, DB: sqlDB, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	var mailer emailsvc.Sender = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}

	users := &usersvc.Service{DB: db, Rdb: rdb, Email: mailer}
	friends := &friendsvc.Service{DB: db}
	travels := &travelsvc.Service{DB: db, Friends: friends}
	invites := &invitesvc.Service{
		DB:            db,
		Email:         mailer,
		InviteBaseURL: cfg.InviteBaseURL,
		TokenAttempts: cfg.InviteTokenAttempts,
	}
	cities := &citysvc.Service{DB: db}
	uploads := &uploadsvc.Service{
		Client:      &uploadsvc.HTTPClient{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseSecretKey},
		SupabaseURL: cfg.SupabaseURL,
	}

	// Auth
	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Users:      users,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", middleware.RequireAuth(), ah.Logout)

	// Users
	uh := &userhandler.Handlers{Service: users}
	ug := app.Group("/users", middleware.RequireAuth())
	ug.Get("/me", uh.Me)
	ug.Patch("/me", uh.UpdateMe)
	ug.Get("/search", middleware.AuthorizePermission(constants.SearchUsers), uh.Search)
	ug.Get("/", middleware.AuthorizePermission(constants.ListUsers), uh.List)
	ug.Get("/:id", uh.View)

	// Friends
	fh := &friendhandler.Handlers{Service: friends}
	fg := app.Group("/friends", middleware.RequireAuth())
	fg.Get("/", fh.List)
	fg.Get("/invites", fh.Invites)
	fg.Post("/invite/send/:receiverId", fh.SendInvite)
	fg.Post("/invite/accept/:inviteId", fh.AcceptInvite)
	fg.Post("/invite/reject/:inviteId", fh.RejectInvite)
	fg.Get("/:userId/status", fh.Status)
	fg.Delete("/:userId", fh.Remove)

	// Travel invites. Token and invite routes go first so "invites" is never read as a travel id.
	ih := &invitehandler.Handlers{Service: invites}
	app.Get("/travels/invites/:token", ih.Preview)
	app.Get("/invites", middleware.RequireAuth(), ih.ListReceived)

	tg := app.Group("/travels", middleware.RequireAuth())
	tg.Post("/invites/:token/accept", ih.Accept)
	tg.Post("/invites/:token/decline", ih.Decline)
	tg.Post("/invites/:invite/resend", ih.Resend)
	tg.Delete("/invites/:invite", ih.Cancel)

	// Travels
	th := &travelhandler.Handlers{Service: travels}
	tg.Post("/", th.Create)
	tg.Get("/", th.ListMine)
	tg.Get("/public", th.ListPublic)
	tg.Get("/:travel", th.Get)
	tg.Put("/:travel", th.Update)
	tg.Delete("/:travel", th.Delete)
	tg.Get("/:travel/members", th.Members)
	tg.Patch("/:travel/members/:user", th.UpdateMemberRole)
	tg.Delete("/:travel/members/:user", th.RemoveMember)
	tg.Delete("/:travel/leave", th.Leave)
	tg.Post("/:travel/add/:friendId", th.AddFriend)
	tg.Get("/:travel/events", th.Events)
	tg.Get("/:travel/invites", ih.ListForTravel)
	tg.Post("/:travel/invites", ih.Create)

	// Cities
	ch := &cityhandler.Handlers{Service: cities}
	tg.Get("/:travel/cities", ch.List)
	tg.Post("/:travel/cities", ch.Create)
	tg.Put("/:travel/cities/:city", ch.Update)
	tg.Delete("/:travel/cities/:city", ch.Delete)

	// Uploads
	uph := &uploadhandler.Handlers{Service: uploads}
	upg := app.Group("/uploads", middleware.RequireAuth())
	upg.Post("/avatar", uph.UploadAvatar)
	upg.Post("/travel-cover", uph.UploadTravelCover)

	return app, db, rdb, nil
}
