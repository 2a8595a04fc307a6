package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/joripage/matching-engine/pkg/engine"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/publisher"
	"github.com/joripage/matching-engine/pkg/ringqueue"
)

const (
	minPrice = 100
	maxPrice = 160
	minQty   = 1
	maxQty   = 100
)

// randomLine returns a new order line, or every tenth time a cancel of an
// earlier order.
func randomLine(r *rand.Rand, id int) string {
	if id > 10 && r.Intn(10) == 0 {
		return fmt.Sprintf("C,%d,%d", r.Intn(100)+1, r.Intn(id-1)+1)
	}
	side := "B"
	if r.Intn(2) == 0 {
		side = "S"
	}
	price := minPrice + r.Intn(maxPrice-minPrice+1)
	if r.Intn(50) == 0 {
		price = 0
	}
	qty := r.Intn(maxQty-minQty+1) + minQty
	return fmt.Sprintf("N,%d,ABC,%d,%d,%s,%d", r.Intn(100)+1, price, qty, side, id)
}

func main() {
	var (
		numOrders int
		seed      int64
		capacity  int
	)
	flag.IntVar(&numOrders, "orders", 1_000_000, "number of input lines")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	flag.IntVar(&capacity, "queue", 65535, "ingestion queue capacity")
	flag.Parse()

	r := rand.New(rand.NewSource(seed))
	lines := make([]string, numOrders)
	for i := range lines {
		lines[i] = randomLine(r, i+1)
	}
	input := strings.Join(lines, "\n")

	stats := publisher.NewStats(nil)
	e := engine.New(engine.Config{
		LevelsPerBook: 2 * (maxPrice - minPrice + 1),
		QueueCapacity: capacity,
		ProducerBackoff: ringqueue.BackoffConfig{
			InitialInterval: time.Microsecond,
			MaxInterval:     time.Millisecond,
			MaxElapsedTime:  5 * time.Second,
		},
		ConsumerBackoff: ringqueue.BackoffConfig{
			InitialInterval: time.Microsecond,
			MaxInterval:     500 * time.Microsecond,
		},
	}, stats, nil)

	start := time.Now()
	if err := e.Run(context.Background(), engine.NewScannerSource(strings.NewReader(input))); err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	s, _ := stats.Symbol("ABC")
	run := e.Stats()
	bid, ask := e.Manager().TopOfBook("ABC")

	fmt.Println("--------")
	fmt.Printf("🏁 Total Orders     : %d (seed %d)\n", numOrders, seed)
	fmt.Printf("📥 Processed        : %d, rejected %d, invalid %d\n", run.Processed, run.Rejected, run.Invalid)
	fmt.Printf("✅ Total Matches    : %d\n", s.Trades)
	fmt.Printf("📦 Total Matched Qty: %d\n", s.Volume)
	fmt.Printf("💰 VWAP             : %s\n", s.VWAP().StringFixed(2))
	fmt.Printf("📖 Book             : %s / %s, %d resting\n", side(bid), side(ask), e.Manager().ActiveOrders())
	fmt.Printf("⏱️ Time Taken       : %s (%.0f orders/s)\n", elapsed, float64(numOrders)/elapsed.Seconds())
}

func side(t orderbook.TopOfBook) string {
	if t.NoMarket {
		return "-"
	}
	return fmt.Sprintf("%dx%d", t.Price, t.Qty)
}
