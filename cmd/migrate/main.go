package main

import (
	"flag"
	"log"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/config"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/storage/postgres"
)

// usage: migrate [up|down|drop|version]
func main() {
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	db := config.LoadDatabase()

	m, err := postgres.NewMigrator(postgres.URL(&db))
	if err != nil {
		log.Fatalf("migration %s failed: %v", action, err)
	}
	defer m.Close()

	version, dirty, err := postgres.Migrate(m, action)
	if err != nil {
		log.Fatalf("migration %s failed: %v", action, err)
	}

	log.Printf("migration %s completed: version=%d dirty=%t", action, version, dirty)
}
