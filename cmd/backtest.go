package cmd

import (
	"context"
	"fmt"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/dataeng"
	"github.com/hashmap-kz/quantd/internal/quant/backtest"
)

type BacktestCmdOpts struct {
	Ticker         string
	Strategy       string
	InitialCapital float64
}

// RunBacktest fetches history for one ticker, runs the strategy and prints
// the performance summary.
func RunBacktest(ctx context.Context, opts *BacktestCmdOpts) error {
	cfg := config.Cfg()

	strat, err := defaultRegistry().Create(opts.Strategy, nil)
	if err != nil {
		return err
	}

	client := dataeng.NewClient(&cfg.Data, nil)
	srs, err := client.Candles(ctx, opts.Ticker)
	if err != nil {
		return err
	}

	capital := opts.InitialCapital
	if capital <= 0 {
		capital = backtest.DefaultInitialCapital
	}
	res, err := backtest.Run(srs, strat, capital)
	if err != nil {
		return err
	}

	fmt.Printf("%s / %s\n", res.Ticker, res.Strategy)
	fmt.Printf("  initial capital:  %12.2f\n", res.InitialCapital)
	fmt.Printf("  final value:      %12.2f\n", res.FinalValue)
	fmt.Printf("  net profit:       %12.2f (%.2f%%)\n", res.NetProfit, res.NetProfitPct)
	fmt.Printf("  max drawdown:     %11.2f%%\n", res.MaxDrawdownPct)
	fmt.Printf("  sharpe ratio:     %12.2f\n", res.SharpeRatio)
	fmt.Printf("  win rate:         %11.2f%%\n", res.WinRatePct)
	fmt.Printf("  trades:           %12d\n", res.Trades)
	return nil
}
