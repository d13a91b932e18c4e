package main

import (
	"github.com/fatih/color"

	"solana-arbitrage-core/evaluator"
)

var (
	profitColor = color.New(color.FgGreen, color.Bold)
	riskColor   = map[evaluator.RiskClass]*color.Color{
		evaluator.RiskLow:    color.New(color.FgGreen),
		evaluator.RiskMedium: color.New(color.FgYellow),
		evaluator.RiskHigh:   color.New(color.FgRed),
	}
)

// printOpportunities drains ch, printing one colorized line per
// OpportunityRecord, until ch is closed. This is the simulator's stand-in
// for a real executor collaborator; it only observes, it never acts on
// what it prints.
func printOpportunities(ch <-chan evaluator.OpportunityRecord) {
	for rec := range ch {
		rc := riskColor[rec.RiskClass]
		if rc == nil {
			rc = color.New(color.FgWhite)
		}
		profitColor.Printf("[%s] +%.2f bps ", rec.ID.String()[:8], rec.ExpectedProfitBps)
		rc.Printf("risk=%s ", rec.RiskClass.String())
		color.New(color.FgCyan).Printf("hops=%d score=%.3f\n", rec.Cycle.Hops(), rec.PriorityScore)
	}
}
