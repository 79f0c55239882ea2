package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/ingestion"
)

func ranked(slug, title string, position int, score float64) core.RankingScore {
	return core.RankingScore{
		Position:   position,
		TotalScore: score,
		Category:   core.RankingCategory{Id: slug, Name: title, Slug: slug, Title: title},
	}
}

var residences = []*core.Residence{
	{Id: "dxb-001", Name: "Marina Crown Residences", City: "Dubai", Country: "UAE", PriceMin: 7_500_000, PriceMax: 12_000_000, Currency: "USD",
		Amenities: []string{"Private Pool", "Helipad", "Concierge Service"}, Brand: "Bulgari", Lifestyles: []string{"Waterfront", "Urban"},
		Rankings: []core.RankingScore{ranked("best-views", "Best Views", 1, 97.2)}},
	{Id: "dxb-002", Name: "Palm Shoreline Villas", City: "Dubai", Country: "UAE", PriceMin: 4_200_000, PriceMax: 6_000_000, Currency: "USD",
		Amenities: []string{"Private Beach", "Private Pool", "Spa"}, Brand: "Aman", Lifestyles: []string{"Beachfront", "Family"},
		Rankings: []core.RankingScore{ranked("best-beachfront", "Best Beachfront", 3, 91.0)}},
	{Id: "dxb-003", Name: "Downtown Sky Lofts", City: "Dubai", Country: "UAE", PriceMin: 1_800_000, PriceMax: 2_400_000, Currency: "USD",
		Amenities: []string{"Gym", "Concierge Service"}, Brand: "Armani", Lifestyles: []string{"Urban"}},
	{Id: "lon-001", Name: "Mayfair Gardens", City: "London", Country: "UK", PriceMin: 5_500_000, PriceMax: 9_000_000, Currency: "GBP",
		Amenities: []string{"Spa", "Wine Cellar", "Concierge Service"}, Brand: "Four Seasons", Lifestyles: []string{"Urban", "Heritage"},
		Rankings: []core.RankingScore{ranked("best-city-residences", "Best City Residences", 2, 94.5)}},
	{Id: "lon-002", Name: "Thames Wharf Apartments", City: "London", Country: "UK", PriceMin: 1_200_000, PriceMax: 1_900_000, Currency: "GBP",
		Amenities: []string{"Gym", "Cinema Room"}, Lifestyles: []string{"Waterfront", "Urban"}},
	{Id: "lon-003", Name: "Chelsea Mews House", City: "London", Country: "UK", PriceMin: 3_100_000, Currency: "GBP",
		Amenities: []string{"Private Garden", "Wine Cellar"}, Lifestyles: []string{"Heritage", "Family"},
		Rankings: []core.RankingScore{ranked("best-city-residences", "Best City Residences", 7, 84.0)}},
	{Id: "nyc-001", Name: "Central Park Tower Residences", City: "New York", Country: "USA", PriceMin: 12_000_000, PriceMax: 40_000_000, Currency: "USD",
		Amenities: []string{"Spa", "Private Pool", "Cinema Room", "Concierge Service"}, Brand: "Ritz-Carlton", Lifestyles: []string{"Urban"},
		Rankings: []core.RankingScore{ranked("best-city-residences", "Best City Residences", 1, 98.1), ranked("best-views", "Best Views", 4, 90.3)}},
	{Id: "nyc-002", Name: "Tribeca Loft Collection", City: "New York", Country: "USA", PriceMin: 2_600_000, PriceMax: 4_800_000, Currency: "USD",
		Amenities: []string{"Gym", "Rooftop Terrace"}, Lifestyles: []string{"Urban", "Artistic"}},
	{Id: "mia-001", Name: "Biscayne Bay Estates", City: "Miami", Country: "USA", PriceMin: 6_000_000, PriceMax: 15_000_000, Currency: "USD",
		Amenities: []string{"Private Beach", "Marina", "Private Pool"}, Brand: "Four Seasons", Lifestyles: []string{"Beachfront", "Yachting"},
		Rankings: []core.RankingScore{ranked("best-beachfront", "Best Beachfront", 1, 96.4)}},
	{Id: "mia-002", Name: "Brickell Bay Suites", City: "Miami", Country: "USA", PriceMin: 850_000, PriceMax: 1_400_000, Currency: "USD",
		Amenities: []string{"Gym", "Private Pool"}, Lifestyles: []string{"Urban", "Waterfront"}},
	{Id: "mco-001", Name: "Monte Carlo Harbour View", City: "Monaco", Country: "Monaco", PriceMin: 18_000_000, Currency: "EUR",
		Amenities: []string{"Marina", "Spa", "Concierge Service"}, Lifestyles: []string{"Yachting", "Waterfront"},
		Rankings: []core.RankingScore{ranked("best-views", "Best Views", 2, 95.8)}},
	{Id: "zrm-001", Name: "Matterhorn Chalet Lodge", City: "Zermatt", Country: "Switzerland", PriceMin: 3_900_000, PriceMax: 5_200_000, Currency: "CHF",
		Amenities: []string{"Ski-in/Ski-out", "Spa", "Wine Cellar"}, Brand: "Aman", Lifestyles: []string{"Alpine", "Wellness"},
		Rankings: []core.RankingScore{ranked("best-mountain-retreats", "Best Mountain Retreats", 1, 97.9)}},
	{Id: "zrm-002", Name: "Riffelalp Cabins", City: "Zermatt", Country: "Switzerland", PriceMin: 1_600_000, Currency: "CHF",
		Amenities: []string{"Ski-in/Ski-out"}, Lifestyles: []string{"Alpine", "Family"},
		Rankings: []core.RankingScore{ranked("best-mountain-retreats", "Best Mountain Retreats", 9, 78.2)}},
	{Id: "bal-001", Name: "Uluwatu Cliff Villas", City: "Bali", Country: "Indonesia", PriceMin: 2_200_000, PriceMax: 3_500_000, Currency: "USD",
		Amenities: []string{"Private Pool", "Spa", "Yoga Pavilion"}, Brand: "Bulgari", Lifestyles: []string{"Wellness", "Beachfront"},
		Rankings: []core.RankingScore{ranked("best-wellness", "Best Wellness", 2, 93.0)}},
	{Id: "bal-002", Name: "Ubud Rainforest Retreat", City: "Bali", Country: "Indonesia", PriceMin: 650_000, PriceMax: 950_000, Currency: "USD",
		Amenities: []string{"Yoga Pavilion", "Private Garden"}, Lifestyles: []string{"Wellness", "Eco"}},
	{Id: "tyo-001", Name: "Minato Park Residences", City: "Tokyo", Country: "Japan", PriceMin: 4_700_000, PriceMax: 8_100_000, Currency: "USD",
		Amenities: []string{"Gym", "Concierge Service", "Onsen"}, Brand: "Aman", Lifestyles: []string{"Urban", "Wellness"},
		Rankings: []core.RankingScore{ranked("best-city-residences", "Best City Residences", 5, 88.6)}},
}

var seedFileName = flag.String("src", "", "file of residences, one JSON object per line")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// residencesFromFile returns an iterator over residences in a JSON Lines file.
// Malformed lines are logged and skipped.
func residencesFromFile(filename string) (iter.Seq[*core.Residence], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(*core.Residence) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			if len(scanner.Bytes()) == 0 {
				continue
			}
			var r core.Residence
			if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
				slog.Warn("skipping malformed residence", "line", line, "err", err)
				continue
			}
			if !yield(&r) {
				return
			}
		}
	}, nil
}

// residencesFromSlice returns an iterator over a slice of residences.
func residencesFromSlice(residences []*core.Residence) iter.Seq[*core.Residence] {
	return func(yield func(*core.Residence) bool) {
		for _, r := range residences {
			if !yield(r) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and ingests residences in batches.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[*core.Residence], batchSize int) (int, error) {
	batch := make([]*core.Residence, 0, batchSize)
	total := 0

	for r := range source {
		batch = append(batch, r)
		if len(batch) == batchSize {
			if err := pipeline.Ingest(ctx, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = make([]*core.Residence, 0, batchSize)
		}
	}

	// Process any remaining residences
	if len(batch) > 0 {
		if err := pipeline.Ingest(ctx, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}

	return total, nil
}

func main() {
	app, err := concierge.New(context.Background(), "./concierge_db")
	if err != nil {
		panic(err)
	}
	defer app.Close()

	ingester, err := app.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[*core.Residence]
	if seedFileName != nil && *seedFileName != "" {
		source, err = residencesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = residencesFromSlice(residences)
	}

	// Ingest in batches of 5
	total, err := ingestBatched(ctx, ingester, source, 5)
	if err != nil {
		panic(err)
	}
	ingester.Wait()
	fmt.Printf("Seeded %d residences\n", total)
}
