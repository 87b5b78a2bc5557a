// Command main seeds the workshop catalog and optional demo accounts.
package main

import (
	"flag"
	"log"

	"workshophub/internal/bootstrap"
	"workshophub/internal/config"
	"workshophub/internal/database"
	"workshophub/internal/seed"
)

func main() {
	catalogPath := flag.String("catalog", "", "YAML catalog to seed (defaults to SEED_CATALOG, then the built-in catalog)")
	demoUsers := flag.Int("users", 0, "Number of demo users to create")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *catalogPath != "" {
		cfg.SeedCatalog = *catalogPath
	}

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedCatalog: true, DemoUsers: *demoUsers})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := database.Close(db); err != nil {
		log.Printf("Failed to close database: %v", err)
	}

	log.Println("✨ All done! The workshop catalog is in place.")
	if *demoUsers > 0 {
		log.Printf("📧 All demo users have the password: %s", seed.DemoPassword)
	}
}
