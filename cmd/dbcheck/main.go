package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/kcczz8xx/JumpRope-App-sub000/internal/config"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/auth"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/database"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/repositories"
)

// dbcheck connects to the configured database, applies migrations, seeds the
// default access policies and reports row counts per table.
func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	dsn := cfg.DSN
	if envDSN := os.Getenv("TEST_DATABASE_DSN"); envDSN != "" {
		dsn = envDSN
	}

	db, err := database.Open(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("database connection ok")

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}
	fmt.Println("migrations applied")

	cas, err := auth.NewCasbinService(db, cfg.CasbinModelPath)
	if err != nil {
		log.Fatalf("Failed to load casbin model: %v", err)
	}
	if err := cas.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed policies: %v", err)
	}
	fmt.Println("default policies seeded")

	tables := []struct {
		name  string
		model interface{}
	}{
		{"users", &repositories.DBUser{}},
		{"otp_records", &repositories.DBOTPRecord{}},
		{"password_reset_tokens", &repositories.DBResetToken{}},
	}
	for _, tbl := range tables {
		n, err := count(db.Model(tbl.model))
		if err != nil {
			log.Fatalf("Failed to query %s: %v", tbl.name, err)
		}
		fmt.Printf("  %-22s %d rows\n", tbl.name, n)
	}

	n, err := count(db.Table("auth.casbin_rule"))
	if err != nil {
		log.Fatalf("Failed to query casbin_rule: %v", err)
	}
	fmt.Printf("  %-22s %d rows\n", "casbin_rule", n)
}

func count(q *gorm.DB) (int64, error) {
	var n int64
	err := q.Count(&n).Error
	return n, err
}
