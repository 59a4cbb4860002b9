package market

import (
	"math/rand"
	"time"
)

// Seed returns the stock catalogue the simulator starts with, each carrying
// a generated 30-day price history ending at the quoted price.
func Seed(now time.Time) []Stock {
	rng := rand.New(rand.NewSource(now.UnixNano()))

	stocks := []Stock{
		{Symbol: "AAPL", CompanyName: "Apple Inc.", Price: 178.92, Change: 2.45, ChangePercent: 1.38, Volume: 23456789, MarketCap: 2850000000000, Sector: "Technology"},
		{Symbol: "MSFT", CompanyName: "Microsoft Corporation", Price: 315.75, Change: -1.25, ChangePercent: -0.39, Volume: 18765432, MarketCap: 2350000000000, Sector: "Technology"},
		{Symbol: "GOOGL", CompanyName: "Alphabet Inc.", Price: 138.45, Change: 0.87, ChangePercent: 0.63, Volume: 9876543, MarketCap: 1750000000000, Sector: "Technology"},
		{Symbol: "AMZN", CompanyName: "Amazon.com Inc.", Price: 132.65, Change: -2.35, ChangePercent: -1.74, Volume: 12345678, MarketCap: 1350000000000, Sector: "Consumer Cyclical"},
		{Symbol: "TSLA", CompanyName: "Tesla, Inc.", Price: 242.18, Change: 5.67, ChangePercent: 2.40, Volume: 34567890, MarketCap: 770000000000, Sector: "Automotive"},
		{Symbol: "NVDA", CompanyName: "NVIDIA Corporation", Price: 437.92, Change: 12.43, ChangePercent: 2.92, Volume: 28765432, MarketCap: 1080000000000, Sector: "Technology"},
		{Symbol: "META", CompanyName: "Meta Platforms, Inc.", Price: 325.52, Change: 1.23, ChangePercent: 0.38, Volume: 15678901, MarketCap: 835000000000, Sector: "Technology"},
		{Symbol: "JPM", CompanyName: "JPMorgan Chase & Co.", Price: 152.34, Change: -0.89, ChangePercent: -0.58, Volume: 8765432, MarketCap: 450000000000, Sector: "Financial Services"},
		{Symbol: "V", CompanyName: "Visa Inc.", Price: 245.73, Change: 0.32, ChangePercent: 0.13, Volume: 7654321, MarketCap: 510000000000, Sector: "Financial Services"},
		{Symbol: "WMT", CompanyName: "Walmart Inc.", Price: 59.87, Change: 0.45, ChangePercent: 0.76, Volume: 6543210, MarketCap: 420000000000, Sector: "Consumer Defensive"},
	}

	for i := range stocks {
		stocks[i].PriceHistory = backfillHistory(rng, stocks[i].Price, 30, now)
	}
	return stocks
}

// backfillHistory walks a price backwards-in-time view of the last n days,
// ending exactly at basePrice on the final point.
func backfillHistory(rng *rand.Rand, basePrice float64, days int, now time.Time) []PricePoint {
	history := make([]PricePoint, 0, days+1)
	price := basePrice
	for i := days; i >= 0; i-- {
		change := price * (rng.Float64()*0.06 - 0.03)
		price = roundCents(price + change)
		if i == 0 {
			price = basePrice
		}
		history = append(history, PricePoint{
			Time:  now.AddDate(0, 0, -i),
			Price: price,
		})
	}
	return history
}
