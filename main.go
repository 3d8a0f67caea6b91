package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/task-assistant/modules/activity"
	"github.com/example/task-assistant/modules/api"
	"github.com/example/task-assistant/modules/auth"
	"github.com/example/task-assistant/modules/chat"
	"github.com/example/task-assistant/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Task Assistant ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(auth.NewModule())     // Independent module (provides auth services)
	app.Register(task.NewModule())     // Independent module (task lifecycle engine)
	app.Register(activity.NewModule()) // Consumes task events
	app.Register(chat.NewModule())     // Depends on task module
	app.Register(api.NewModule())      // Depends on auth, task, chat, activity

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

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

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("REST API Endpoints (http://localhost:3000):")
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/v1/auth/register           - Register a new user")
	log.Println("  POST   /api/v1/auth/login              - Login and get tokens")
	log.Println("  POST   /api/v1/auth/refresh            - Refresh access token")
	log.Println("  GET    /health                         - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/profile                 - Get current user profile")
	log.Println("  POST   /api/v1/tasks                   - Create a task")
	log.Println("  GET    /api/v1/tasks                   - List active tasks (?status=, ?sort=)")
	log.Println("  GET    /api/v1/tasks/history           - List deleted tasks")
	log.Println("  DELETE /api/v1/tasks/history           - Purge history permanently")
	log.Println("  POST   /api/v1/tasks/clear-completed   - Move completed tasks to history")
	log.Println("  GET    /api/v1/tasks/:id               - Get a task")
	log.Println("  PUT    /api/v1/tasks/:id               - Update a task")
	log.Println("  DELETE /api/v1/tasks/:id               - Delete a task (to history)")
	log.Println("  POST   /api/v1/tasks/:id/restore       - Restore a task from history")
	log.Println("  GET    /api/v1/activity                - Recent task activity")
	log.Println("  POST   /api/v1/chat                    - Send a chat message (rate limited)")
	log.Println("  GET    /api/v1/chat/conversations      - List conversations")
	log.Println("  GET    /api/v1/chat/conversations/:id  - Get a conversation transcript")
	log.Println("  DELETE /api/v1/chat/conversations/:id  - Delete a conversation")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
