package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/task-admin/modules/api"
	"github.com/example/task-admin/modules/cache"
	"github.com/example/task-admin/modules/captcha"
	"github.com/example/task-admin/modules/catalog"
	"github.com/example/task-admin/modules/console"
	"github.com/example/task-admin/modules/imaging"
	"github.com/example/task-admin/modules/notification"
	"github.com/example/task-admin/modules/photo"
	"github.com/example/task-admin/modules/stream"
	"github.com/example/task-admin/modules/task"
	"github.com/example/task-admin/modules/user"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	httpPort := getEnv("HTTP_PORT", "3000")
	dbPath := getEnv("DB_PATH", "./taskadmin.db")
	redisAddr := getEnv("REDIS_ADDR", "")
	cacheTTL := getEnvDuration("CACHE_TTL", 5*time.Minute)
	cachePrefix := getEnv("CACHE_PREFIX", "catalog:")
	photoStore := getEnv("PHOTO_STORE", photo.StoreDisk)
	photoDir := getEnv("PHOTO_DIR", "./uploads")
	natsURL := getEnv("NATS_URL", "")
	imagingWorkers := getEnvInt("IMAGING_WORKERS", 3)
	watermarkText := getEnv("WATERMARK_TEXT", "")
	seedData := getEnvBool("SEED_DATA", true)

	log.Println("=== Task Admin Console ===")
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Database: %s", dbPath)
	if redisAddr == "" {
		log.Printf("Cache: in-memory (TTL: %s)", cacheTTL)
	} else {
		log.Printf("Cache: Redis at %s (TTL: %s)", redisAddr, cacheTTL)
	}
	log.Printf("Photo store: %s", photoStore)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	userModule := user.NewModule()
	taskModule := task.NewModule(seedData)
	cacheModule := cache.NewModule(redisAddr, cachePrefix, cacheTTL)
	streamModule := stream.NewModule()
	catalogModule := catalog.NewModule(dbPath, seedData)
	photoModule := photo.NewModule(photoStore, photoDir, natsURL)
	captchaModule := captcha.NewModule(captcha.DefaultTTL)
	notificationModule := notification.NewModule()
	consoleModule := console.NewModule()
	imagingModule := imaging.NewModule(imagingWorkers, watermarkText)
	apiModule := api.NewModule(httpPort)

	// Direct wiring for handles the request-reply plumbing cannot carry:
	// the cache store, the broadcast hub and the per-connection console
	// sessions are in-process objects, not messages.
	catalogModule.SetCache(cacheModule.GetStore())
	notificationModule.SetHub(streamModule.GetHub())
	apiModule.SetConsole(consoleModule)
	apiModule.SetHub(streamModule.GetHub())

	apiModule.AddHealthSource("task", taskModule)
	apiModule.AddHealthSource("cache", cacheModule)
	apiModule.AddHealthSource("stream", streamModule)
	apiModule.AddHealthSource("catalog", catalogModule)
	apiModule.AddHealthSource("photo", photoModule)
	apiModule.AddHealthSource("captcha", captchaModule)
	apiModule.AddHealthSource("notification", notificationModule)
	apiModule.AddHealthSource("imaging", imagingModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies.
	app.Register(userModule)
	app.Register(taskModule)
	app.Register(cacheModule)
	app.Register(streamModule)
	app.Register(catalogModule)
	app.Register(photoModule)
	app.Register(captchaModule)
	app.Register(notificationModule) // consumes task and photo events
	app.Register(consoleModule)      // depends on task
	app.Register(imagingModule)      // depends on photo, consumes upload events
	app.Register(apiModule)          // driving adapter, depends on everything above

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(httpPort)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port string) {
	base := "http://localhost:" + port
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API (%s):", base)
	log.Println("  GET    /api/v1/tasks                 - List tasks (filter/sort/paginate)")
	log.Println("  POST   /api/v1/tasks                 - Create a task")
	log.Println("  PUT    /api/v1/tasks/:id             - Update a task")
	log.Println("  DELETE /api/v1/tasks/:id             - Delete a task")
	log.Println("  POST   /api/v1/tasks/batch-delete    - Delete selected tasks")
	log.Println("  POST   /api/v1/tasks/batch-status    - Update status of selected tasks")
	log.Println("  GET    /api/v1/users                 - Assignee directory")
	log.Println("  GET    /api/v1/products              - Product catalog (cached)")
	log.Println("  POST   /api/v1/photos                - Upload a photo")
	log.Println("  GET    /api/v1/photos/:id/download   - Download original or variant")
	log.Println("  GET    /api/v1/qrcode?content=...    - QR code PNG")
	log.Println("  GET    /api/v1/captcha               - Arithmetic captcha")
	log.Println("  GET    /api/v1/activities            - Recent activity feed")
	log.Println("  GET    /health                       - Aggregated module health")
	log.Println("")
	log.Println("WebSocket:")
	log.Printf("  %s/ws/console - Interactive console session", "ws://localhost:"+port)
	log.Printf("  %s/ws/events  - Live activity stream", "ws://localhost:"+port)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
