package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/adapter/view"
	"github.com/rl1809/shop-cart/internal/app"
	"github.com/rl1809/shop-cart/internal/config"
	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/core/service"
)

const pollInterval = 50 * time.Millisecond

type tab struct {
	store  *service.CartStore
	widget *service.Widget
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	tabCount := flag.Int("tabs", 5, "number of tabs sharing the cart")
	addsPerTab := flag.Int("adds", 10, "add actions fired by each tab")
	settle := flag.Duration("settle", 5*time.Second, "how long to wait for tabs to converge")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	// Per-render logs from every tab drown the report
	if logger.GetLevel() > logrus.WarnLevel {
		logger.SetLevel(logrus.WarnLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backends, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open backends: %v", err)
	}
	defer backends.Close()

	// Clear previous test data
	if _, err := backends.Area.RemoveItem(ctx, cfg.Cart.StorageKey); err != nil {
		logger.Fatalf("failed to clear cart: %v", err)
	}

	tabs := make([]*tab, *tabCount)
	for i := range tabs {
		tabs[i], err = openTab(ctx, cfg, backends, logger.WithField("tab", i))
		if err != nil {
			logger.Fatalf("failed to open tab %d: %v", i, err)
		}
	}

	products := backends.Catalog.Products()
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Fire concurrent adds from every tab
	var wg sync.WaitGroup
	start := time.Now()

	for i, t := range tabs {
		wg.Add(1)
		go func(id int, t *tab) {
			defer wg.Done()

			rnd := rand.New(rand.NewSource(int64(id)))
			for n := 0; n < *addsPerTab; n++ {
				p := products[rnd.Intn(len(products))]
				if _, err := t.widget.Add(ctx, p.ID); err == nil {
					successCount.Add(1)
				} else {
					failCount.Add(1)
				}
			}
		}(i, t)
	}

	wg.Wait()
	elapsed := time.Since(start)

	stored, converged := waitForConvergence(ctx, backends, cfg.Cart.StorageKey, tabs, *settle)

	fmt.Println("========== SYNC CHECK RESULTS ==========")
	fmt.Printf("Storage / Sync:   %s / %s\n", cfg.Cart.Storage, cfg.Cart.Sync)
	fmt.Printf("Tabs:             %d\n", len(tabs))
	fmt.Printf("Add Actions:      %d\n", len(tabs)**addsPerTab)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=========================================")

	if failCount.Load() == 0 {
		fmt.Println("PASS: every add succeeded")
	} else {
		fmt.Printf("FAIL: %d adds failed\n", failCount.Load())
	}

	items, err := domain.DecodeCart(stored)
	if err != nil {
		fmt.Printf("FAIL: stored cart does not decode: %v\n", err)
		return
	}
	fmt.Printf("Stored Cart:      %d lines, %d items\n", len(items), domain.ComputeTotals(items).Count)

	if converged {
		fmt.Println("PASS: all tabs show the stored cart")
	} else {
		fmt.Printf("FAIL: tabs did not converge within %v\n", *settle)
	}
}

func openTab(ctx context.Context, cfg config.Config, b *app.Backends, log logrus.FieldLogger) (*tab, error) {
	ts := service.NewTabStorage(b.Area, b.Bus, log)
	store := service.NewCartStore(b.Catalog, ts, cfg.Cart.StorageKey, log)
	w, err := service.NewWidget(b.Catalog, store, ts, view.NewLogView(log), log)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	go func() {
		if err := w.Sync(ctx); err != nil {
			log.Errorf("sync stopped: %v", err)
		}
	}()

	return &tab{store: store, widget: w}, nil
}

// waitForConvergence polls until every tab holds what storage holds, or the deadline passes.
func waitForConvergence(ctx context.Context, b *app.Backends, key string, tabs []*tab, settle time.Duration) (string, bool) {
	deadline := time.Now().Add(settle)
	for {
		stored, _, err := b.Area.GetItem(ctx, key)
		if err == nil && allMatch(stored, tabs) {
			return stored, true
		}
		if time.Now().After(deadline) {
			return stored, false
		}
		time.Sleep(pollInterval)
	}
}

func allMatch(stored string, tabs []*tab) bool {
	for _, t := range tabs {
		encoded, err := domain.EncodeCart(t.store.Items())
		if err != nil || encoded != stored {
			return false
		}
	}
	return true
}
