package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/api"
	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/pkg/config"
)

func main() {
	log.Println("🚀 Creating test users...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DemoMode() {
		log.Fatal("No backend configured. Set PANDA_API_BASE_URL and identity settings in .env first.")
	}

	client := api.New(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	)

	users := []struct {
		email       string
		password    string
		displayName string
		role        entities.UserRole
	}{
		{"speaker@panda.live", "demo123", "Demo Speaker", entities.RoleSpeaker},
		{"listener@panda.live", "demo123", "Demo Listener", entities.RoleListener},
	}

	ctx := context.Background()
	for _, u := range users {
		resp, err := client.Register(ctx, u.email, u.password, u.displayName, u.role)
		if err != nil {
			if errors.CodeOf(err) == errors.ErrorCode_ALREADY_EXISTS {
				log.Printf("⚠️  User %s already exists, skipping", u.email)
				continue
			}
			log.Fatalf("Failed to create user %s: %v", u.email, err)
		}
		log.Printf("✅ Created %s (%s)", resp.User.Email, resp.User.Role)
	}

	fmt.Println()
	log.Println("Test users ready:")
	log.Println("  speaker@panda.live / demo123")
	log.Println("  listener@panda.live / demo123")
}
