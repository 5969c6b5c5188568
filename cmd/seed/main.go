package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"resellops/pkg/auth"
	"resellops/pkg/config"
	"resellops/pkg/db"
	"resellops/pkg/rbac"
	"resellops/services/catalog"
	"resellops/services/user"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
)

// Seeds a superadmin plus the baseline catalog, and prints a bearer token
// for smoke-testing the API.
func main() {
	log := zap.Must(zap.NewDevelopment())
	zap.ReplaceGlobals(log)

	cfg := config.LoadConfig(config.Params{})
	conn := db.New(cfg, db.Dialect(cfg))

	node, err := snowflake.NewNode(cfg.Snowflake.NodeID)
	if err != nil {
		log.Fatal("failed to init snowflake node", zap.Error(err))
	}

	if err := conn.AutoMigrate(&user.User{}, &catalog.Platform{}, &catalog.Category{}); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme-now"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}

	admin := &user.User{
		ID:           node.Generate(),
		Email:        "admin@resellops.local",
		Name:         "Root Admin",
		PasswordHash: string(hash),
		Role:         rbac.SuperAdmin,
		Active:       true,
	}
	if err := conn.Create(admin).Error; err != nil {
		log.Fatal("failed to create admin", zap.Error(err))
	}

	for _, p := range []struct {
		name string
		kind catalog.PlatformKind
	}{
		{"AliExpress", catalog.KindSource},
		{"eBay", catalog.KindListing},
		{"Amazon", catalog.KindListing},
	} {
		record := &catalog.Platform{
			ID:   node.Generate(),
			Name: p.name,
			Slug: slug.Make(p.name),
			Kind: p.kind,
		}
		if err := conn.Create(record).Error; err != nil {
			log.Fatal("failed to create platform", zap.String("name", p.name), zap.Error(err))
		}
	}

	token, err := auth.SignToken(auth.Principal{ID: admin.ID, Role: admin.Role}, cfg.Session.Secret, 24*time.Hour)
	if err != nil {
		log.Fatal("failed to sign token", zap.Error(err))
	}

	fmt.Printf("admin user: %s\nbearer token: %s\n", admin.Email, token)
}
