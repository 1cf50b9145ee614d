package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/dataeng"
	"github.com/hashmap-kz/quantd/internal/quant/scoring"
	"github.com/hashmap-kz/quantd/internal/scansuperv"
	"github.com/hashmap-kz/quantd/internal/snapshot"
)

type ScanCmdOpts struct {
	Sector  string
	NoStore bool
}

// RunScan performs a single scan from the CLI and prints the ranking.
func RunScan(ctx context.Context, opts *ScanCmdOpts) error {
	cfg := config.Cfg()
	if opts.Sector != "" {
		cfg.Scan.Sector = opts.Sector
	}

	var store *snapshot.Store
	if !opts.NoStore {
		store = mustSetupStore(cfg)
	}

	scanner := scansuperv.NewScanner(cfg, &scansuperv.ScannerOpts{
		Client: dataeng.NewClient(&cfg.Data, nil),
		Store:  store,
	})
	snap, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tTICKER\tNAME\tPRICE\tMCAP\tCOMPOSITE\tSENT\tCAT\tINS\tOPT\tTECH")
	for _, c := range snap.Candidates {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%.2f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			c.Rank, c.Ticker, c.Name, c.Price, scoring.FormatMarketCap(c.MarketCap),
			c.Composite, c.SentimentScore, c.CatalystScore, c.InsiderScore,
			c.OptionsScore, c.TechnicalScore,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Top picks:")
	for _, p := range snap.TopPicks {
		fmt.Printf("  %d. %s (%s) composite %.2f\n", p.Rank, p.Ticker, p.Name, p.Composite)
	}
	return nil
}
