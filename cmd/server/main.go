package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/portfolio-project/portfolio-server/internal/api/handlers"
	"github.com/portfolio-project/portfolio-server/internal/api/middleware"
	"github.com/portfolio-project/portfolio-server/internal/config"
	"github.com/portfolio-project/portfolio-server/internal/database"
	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/models"
	"github.com/portfolio-project/portfolio-server/internal/upload"
)

func main() {
	var createAdmin bool
	var migrate bool
	var version bool
	flag.BoolVar(&createAdmin, "create-admin", false, "Interactively create a super_admin account")
	flag.BoolVar(&migrate, "migrate", false, "Run database migrations only")
	flag.BoolVar(&version, "version", false, "Show version information")
	flag.Parse()

	if version {
		fmt.Printf("Portfolio Server v1.0.0\n")
		return
	}

	// Load configuration; missing DATABASE_URL or JWT_SECRET halts startup
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed: ", err)
	}
	if migrate {
		fmt.Println("Database migrations completed")
		return
	}

	// Initialize queries
	adminQueries := queries.NewAdminQueries(db.DB)
	projectQueries := queries.NewProjectQueries(db.DB)

	if createAdmin {
		if err := runCreateAdmin(adminQueries); err != nil {
			log.Fatal("Failed to create admin: ", err)
		}
		return
	}

	// Initialize image pipeline
	store, err := upload.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to initialize upload storage: ", err)
	}
	pipeline := upload.NewPipeline(store, cfg.MaxUploadSize)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Initialize handlers
	issueToken := func(adminID uuid.UUID) (string, error) {
		return middleware.GenerateToken(cfg.JWTSecret, adminID)
	}
	authHandler := handlers.NewAuthHandler(cfg.JWTSecret, adminQueries)
	adminHandler := handlers.NewAdminHandler(adminQueries)
	projectHandler := handlers.NewProjectHandler(projectQueries, pipeline)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter)

	// Setup router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadSize

	router.Use(middleware.CORS(cfg.CORSOrigin))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		dbState := "connected"
		if err := db.Ping(); err != nil {
			dbState = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"database":  dbState,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Stored project images
	router.Static("/uploads", store.Dir())

	auth := middleware.Auth(cfg.JWTSecret, adminQueries)
	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superOnly := middleware.RequireRole(models.RoleSuperAdmin)

	// OAuth routes (only when GitHub credentials are configured)
	if cfg.GitHubEnabled() {
		oauthHandler := handlers.NewOAuthHandler(cfg, adminQueries, issueToken)
		router.GET("/auth/github", oauthHandler.Redirect)
		router.GET("/auth/github/callback", oauthHandler.Callback)
		log.Println("GitHub OAuth configured")
	} else {
		log.Println("GitHub OAuth not configured - missing GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET")
	}
	router.GET("/auth/status", authHandler.Status)

	api := router.Group("/api")
	{
		// Admin session routes
		admin := api.Group("/admin")
		{
			admin.POST("/login", rateLimiter.Limit("login"), authHandler.Login)
			admin.GET("/profile", auth, authHandler.Profile)
			admin.POST("/logout", auth, authHandler.Logout)

			// Account management (super_admin only)
			admin.POST("/create", auth, superOnly, adminHandler.Create)
			admin.GET("/list", auth, superOnly, adminHandler.List)
			admin.PATCH("/:id/status", auth, superOnly, adminHandler.SetStatus)

			// Rate limiter management (super_admin only)
			admin.GET("/rate-limits", auth, superOnly, rateLimitHandler.GetSettings)
			admin.PUT("/rate-limits", auth, superOnly, rateLimitHandler.UpdateSettings)
			admin.POST("/rate-limits/reset", auth, superOnly, rateLimitHandler.ResetSettings)
		}

		// Project routes: public reads, role-gated writes
		projects := api.Group("/projects")
		{
			projects.GET("", rateLimiter.Limit("public_api"), projectHandler.List)
			projects.GET("/:id", rateLimiter.Limit("public_api"), projectHandler.Get)
			projects.POST("", auth, adminOnly, rateLimiter.Limit("admin_write"), projectHandler.Create)
			projects.PUT("/:id", auth, adminOnly, rateLimiter.Limit("admin_write"), projectHandler.Update)
			projects.DELETE("/:id", auth, adminOnly, rateLimiter.Limit("admin_write"), projectHandler.Delete)
		}
	}

	// Start server
	addr := ":" + cfg.ServerPort
	log.Printf("Portfolio server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// runCreateAdmin interactively bootstraps a super_admin account. The
// password is read without echo.
func runCreateAdmin(admins *queries.AdminQueries) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}

	if string(password) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	params := queries.CreateAdminParams{
		Username: username,
		Password: string(password),
		Role:     models.RoleSuperAdmin,
	}
	if email != "" {
		params.Email = &email
	}

	admin, err := admins.Create(params)
	if err != nil {
		return err
	}

	fmt.Printf("Created super_admin %q (%s)\n", admin.Username, admin.ID)
	return nil
}
