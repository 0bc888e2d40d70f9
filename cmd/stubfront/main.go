// Command stubfront runs the in-memory storefront stub backend used for
// local development of the client.
package main

import (
	"log"

	"github.com/iliyamo/storefront-client/internal/config"
	"github.com/iliyamo/storefront-client/internal/stubapi"
)

func main() {
	cfg := config.LoadStub()

	store := stubapi.NewStore()
	if cfg.SeedDemo {
		seed(store, cfg)
	}

	e := stubapi.New(stubapi.Config{
		JWTSecret:           cfg.JWTSecret,
		AccessTTLMin:        cfg.AccessTTLMin,
		BcryptCost:          cfg.BcryptCost,
		EmptyMutationBodies: cfg.EmptyMutationBodies,
		TokenInBody:         cfg.TokenInBody,
	}, store)

	addr := ":" + cfg.Port
	log.Printf("stubfront listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seed populates a demo account and a small catalog so the client is
// usable immediately.
func seed(store *stubapi.Store, cfg config.StubConfig) {
	if _, err := store.SeedUser("Alice Demo", "alice@example.com", "secret", false, cfg.BcryptCost); err != nil {
		log.Fatalf("seed user: %v", err)
	}
	if _, err := store.SeedUser("Site Admin", "admin@example.com", "admin", true, cfg.BcryptCost); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	store.SeedCategory(stubapi.Category{Name: "Apparel"})
	store.SeedCategory(stubapi.Category{Name: "Mugs"})

	store.SeedProduct(stubapi.Product{Name: "Plain T-Shirt", Price: 19.90, Category: "apparel"})
	store.SeedProduct(stubapi.Product{Name: "Hooded Sweater", Price: 49.50, Category: "apparel"})
	store.SeedProduct(stubapi.Product{Name: "Enamel Mug", Price: 12.00, Category: "mugs"})

	log.Printf("seeded demo users alice@example.com/secret and admin@example.com/admin")
}
