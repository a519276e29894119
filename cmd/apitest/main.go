package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkoopmans/tgtg-bridge/internal/tgtg"
)

// Manual probe against the live TGTG API. Credentials come from the
// environment (or a .env file): TGTG_ACCESS_TOKEN, TGTG_REFRESH_TOKEN,
// TGTG_COOKIE and optionally TGTG_USER_ID.
func main() {
	itemID := flag.String("item", "", "fetch a single item id instead of favorites")
	flag.Parse()

	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf(".env load warning: %v", err)
	}

	client, err := tgtg.NewClient(
		tgtg.Credentials{
			AccessToken:  os.Getenv("TGTG_ACCESS_TOKEN"),
			RefreshToken: os.Getenv("TGTG_REFRESH_TOKEN"),
			Cookie:       os.Getenv("TGTG_COOKIE"),
			UserID:       os.Getenv("TGTG_USER_ID"),
		},
		tgtg.WithTimeout(30*time.Second),
	)
	if err != nil {
		log.Fatalf("NewClient failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Test 1: Session refresh
	fmt.Println("=== Testing RefreshSession ===")
	if err := client.RefreshSession(ctx); err != nil {
		log.Fatalf("RefreshSession failed: %v", err)
	}
	fmt.Println("Session refreshed")

	// Test 2: Listings
	if *itemID != "" {
		fmt.Printf("\n=== Testing GetItem (%s) ===\n", *itemID)
		listing, err := client.GetItem(ctx, *itemID)
		if err != nil {
			log.Fatalf("GetItem failed: %v", err)
		}
		printListing(listing)
	} else {
		fmt.Println("\n=== Testing GetFavorites ===")
		favorites, err := client.GetFavorites(ctx)
		if err != nil {
			log.Fatalf("GetFavorites failed: %v", err)
		}
		fmt.Printf("Fetched %d favorites\n", len(favorites))
		for i := range favorites {
			if i >= 5 {
				fmt.Printf("  ... and %d more\n", len(favorites)-5)
				break
			}
			printListing(&favorites[i])
		}
	}

	// Test 3: Active orders
	fmt.Println("\n=== Testing GetActiveOrders ===")
	orders, err := client.GetActiveOrders(ctx)
	if err != nil {
		log.Fatalf("GetActiveOrders failed: %v", err)
	}
	fmt.Printf("Fetched %d active orders\n", len(orders))
	for _, o := range orders {
		m := o.ToModel()
		fmt.Printf("  item %s x%d (cancel until %s)\n", m.ItemID, m.Quantity, m.CancelUntil)
	}

	fmt.Println("\n=== All API tests passed! ===")
}

func printListing(listing *tgtg.APIListing) {
	m := listing.ToModel()

	id := "?"
	price := "?"
	if m.Item != nil {
		id = m.Item.ItemID
		if m.Item.Price != nil {
			price = m.Item.Price.Format()
		}
	}
	state := "unknown"
	if m.ItemsAvailable != nil {
		state = strconv.Itoa(*m.ItemsAvailable)
	}

	fmt.Printf("  [%s] %s - available: %s, price: %s\n", id, m.DisplayName, state, price)
}
