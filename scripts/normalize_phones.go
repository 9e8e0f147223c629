// Rewrites every stored customer phone into canonical form.
//
//	DATABASE_URL=sqlite://./agencydesk.db go run scripts/normalize_phones.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/AlexTLDR/agencydesk/internal/config"
	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

func main() {
	_ = godotenv.Load()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx := context.Background()
	customers, err := db.AllCustomers(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to query customers")
	}

	fmt.Printf("Found %d customers to process\n", len(customers))

	phones := utils.NewPhoneNormalizer(cfg.PhoneOptions())

	// Normalize each phone number
	updated := 0
	failed := 0
	skipped := 0
	for _, c := range customers {
		if c.Phone == "" {
			skipped++
			continue
		}

		normalized := phones.Format(c.Phone)
		if normalized == "" {
			log.Warn().Int64("customer_id", c.ID).Str("phone", c.Phone).Msg("phone cannot be normalized")
			failed++
			continue
		}

		// Only update if the phone number changed
		if normalized != c.Phone {
			if err := db.UpdateCustomerPhone(ctx, c.ID, normalized); err != nil {
				log.Error().Err(err).Int64("customer_id", c.ID).Msg("failed to update phone")
				failed++
				continue
			}
			fmt.Printf("Updated ID %d: %q -> %q\n", c.ID, c.Phone, normalized)
			updated++
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total: %d\n", len(customers))
	fmt.Printf("  Updated: %d\n", updated)
	fmt.Printf("  Failed: %d\n", failed)
	fmt.Printf("  No phone: %d\n", skipped)
	fmt.Printf("  Unchanged: %d\n", len(customers)-updated-failed-skipped)
}
