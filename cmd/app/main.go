package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"stockroom/internal/ai"
	"stockroom/internal/app"
	"stockroom/internal/core"
	"stockroom/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	repo := core.NewAllocationRepository()
	itemService := core.NewItemService(pool, repo)
	locationService := core.NewLocationService(pool, repo)
	allocationService := core.NewAllocationService(pool, repo)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	svc := app.NewAppService(itemService, locationService, allocationService, agent)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "items":
		result, err := svc.ListItems(ctx)
		if err != nil {
			log.Fatalf("Failed to list items: %v", err)
		}
		printJSON(result)

	case "locations":
		result, err := svc.ListLocations(ctx)
		if err != nil {
			log.Fatalf("Failed to list locations: %v", err)
		}
		printJSON(result)

	case "stock":
		if len(os.Args) < 3 {
			log.Fatal("Usage: app stock <item-id>")
		}
		result, err := svc.GetStockSummary(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Failed to load stock summary: %v", err)
		}
		printJSON(result)

	case "usage":
		if len(os.Args) < 3 {
			log.Fatal("Usage: app usage <location-id>")
		}
		result, err := svc.GetContainerUsage(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Failed to load container usage: %v", err)
		}
		printJSON(result)

	case "transfer":
		if len(os.Args) < 6 {
			log.Fatal("Usage: app transfer <item-id> <from-location-id> <to-location-id> <quantity>")
		}
		qty := mustAtoi(os.Args[5])
		result, err := svc.Transfer(ctx, app.TransferRequest{
			ItemID:         os.Args[2],
			FromLocationID: os.Args[3],
			ToLocationID:   os.Args[4],
			Quantity:       qty,
		})
		if err != nil {
			log.Fatalf("Transfer failed: %v", err)
		}
		printJSON(result)

	case "split":
		if len(os.Args) < 6 {
			log.Fatal("Usage: app split <item-id> <from-location-id> <quantity> <container-name> [capacity]")
		}
		qty := mustAtoi(os.Args[4])
		name := os.Args[5]
		var capacity *int
		if len(os.Args) > 6 {
			c := mustAtoi(os.Args[6])
			capacity = &c
		}
		result, err := svc.SplitToContainer(ctx, app.SplitRequest{
			ItemID:             os.Args[2],
			FromLocationID:     os.Args[3],
			Quantity:           qty,
			CreateNewContainer: true,
			ContainerName:      &name,
			Capacity:           capacity,
		})
		if err != nil {
			log.Fatalf("Split failed: %v", err)
		}
		printJSON(result)

	case "propose":
		if len(os.Args) < 3 {
			log.Fatal("Usage: app propose \"<instruction>\"")
		}
		result, err := svc.InterpretStockCommand(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Agent error: %v", err)
		}
		printJSON(result)

	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: app <command>

Commands:
  items                                                     list items
  locations                                                 list locations
  stock <item-id>                                           derived stock summary
  usage <location-id>                                       container capacity view
  transfer <item-id> <from-id> <to-id> <quantity>           move stock
  split <item-id> <from-id> <quantity> <name> [capacity]    split into a new container
  propose "<instruction>"                                   interpret a natural-language command`)
	os.Exit(2)
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("Invalid number %q", s)
	}
	return n
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
