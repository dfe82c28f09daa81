// Command seed installs the demo data set and optionally imports listings
// from an HTML catalogue.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"carmarket/internal/app"
	"carmarket/internal/auth"
	"carmarket/internal/config"
	"carmarket/internal/importer"
	"carmarket/internal/seed"
)

func main() {
	numListings := flag.Int("listings", 30, "Number of generated listings")
	numFeatured := flag.Int("featured", 6, "How many generated listings are featured")
	randSeed := flag.Int64("rand-seed", 0, "Seed for listing generation (0 = random)")
	shouldClean := flag.Bool("clean", false, "Remove existing data before seeding")
	importFile := flag.String("import", "", "HTML catalogue to import listings from")
	sellerEmail := flag.String("seller", "kim@example.com", "Member that imported listings belong to")
	flag.Parse()

	log.Println("🌱 CarMarket Seeder")
	log.Println("===================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	core, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer core.Close()

	ctx := context.Background()
	s := seed.NewSeeder(core.Store, core.Users, core.Listings, core.Auth)
	sum, err := s.Run(ctx, seed.Options{
		Listings: *numListings,
		Featured: *numFeatured,
		RandSeed: *randSeed,
		Clean:    *shouldClean,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d posts, %d comments, %d listings\n", sum.Users, sum.Posts, sum.Comments, sum.Listings)

	if *importFile != "" {
		if err := importCatalogue(ctx, core, *importFile, *sellerEmail); err != nil {
			log.Fatalf("❌ Import failed: %v", err)
		}
	}

	log.Println("✨ All done!")
	log.Printf("📧 All sample members have the password: %s\n", seed.DemoPassword)
}

func importCatalogue(ctx context.Context, core *app.App, path, sellerEmail string) error {
	seller, err := core.Users.GetByEmail(ctx, sellerEmail)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := importer.Parse(f)
	if err != nil {
		return err
	}
	for _, sk := range res.Skipped {
		log.Printf("skipped card #%d: %s\n", sk.Index, sk.Reason)
	}

	created, rejected := importer.Import(ctx, core.Listing, auth.Identity{UserID: seller.ID, Name: seller.Name}, res.Drafts)
	log.Printf("Imported %d listings (%d rejected, %d skipped)\n", created, rejected, len(res.Skipped))
	return nil
}
