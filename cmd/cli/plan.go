package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/amirasaad/payoutrouter/infra/provider/mockpayment"
	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func planCmd() *cobra.Command {
	var (
		limit        string
		destinations []string
		rounding     string
	)
	cmd := &cobra.Command{
		Use:   "plan <amount> <currency>",
		Short: "Print the payout legs the router would submit",
		Long: `Print the payout legs for an amount without contacting the processor.

The EUR daily limit and destinations default to PAYOUT_EUR_DAILY_LIMIT and
PAYOUT_DESTINATIONS.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := planPolicy(limit, destinations, rounding)
			if err != nil {
				return err
			}
			// Plan never reaches the gateway.
			router, err := payout.NewRouter(policy, mockpayment.NewMockPayoutGateway(),
				slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}
			amount, err := money.ParseAmount(args[0])
			if err != nil {
				return err
			}
			instructions, err := router.Plan(amount, args[1])
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), amount, strings.ToUpper(args[1]), policy.EURDailyLimit, instructions)
			return nil
		},
	}

	cmd.Flags().StringVarP(&limit, "limit", "l",
		config.GetEnv("PAYOUT_EUR_DAILY_LIMIT", "5000"), "EUR daily limit")
	cmd.Flags().StringSliceVarP(&destinations, "dest", "d",
		splitList(config.GetEnv("PAYOUT_DESTINATIONS", "")), "Destination per currency, e.g. EUR:ba_123")
	cmd.Flags().StringVarP(&rounding, "rounding", "r",
		config.GetEnv("PAYOUT_ROUNDING", string(money.DefaultRoundingPolicy)), "Rounding policy (half_up or truncate)")
	return cmd
}

func planPolicy(limit string, destinations []string, rounding string) (payout.Policy, error) {
	eurLimit, err := decimal.NewFromString(limit)
	if err != nil {
		return payout.Policy{}, &payout.ConfigurationError{Field: "limit", Reason: err.Error()}
	}
	policy, err := money.ParseRoundingPolicy(rounding)
	if err != nil {
		return payout.Policy{}, &payout.ConfigurationError{Field: "rounding", Reason: err.Error()}
	}
	table := payout.Destinations{}
	for _, entry := range destinations {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		raw, id, ok := strings.Cut(entry, ":")
		if !ok {
			return payout.Policy{}, &payout.ConfigurationError{Field: "dest", Reason: fmt.Sprintf("expected CUR:id, got %q", entry)}
		}
		code, err := money.ParseCode(raw)
		if err != nil {
			return payout.Policy{}, &payout.ConfigurationError{Field: "dest", Reason: err.Error()}
		}
		table[code] = strings.TrimSpace(id)
	}
	return payout.Policy{
		EURDailyLimit: eurLimit,
		Destinations:  table,
		Rounding:      policy,
	}, nil
}

func printPlan(w io.Writer, amount decimal.Decimal, currency string, limit decimal.Decimal, instructions []payout.Instruction) {
	header := color.New(color.Bold)
	legColor := color.New(color.FgGreen)
	dim := color.New(color.FgHiBlack)

	_, _ = header.Fprintf(w, "%s %s", amount.String(), currency)
	_, _ = dim.Fprintf(w, " (EUR limit %s)\n", limit.String())
	for i, ins := range instructions {
		destination := ins.Destination
		if destination == "" {
			destination = "default account"
		}
		_, _ = legColor.Fprintf(w, "  leg %d: ", i)
		_, _ = fmt.Fprintf(w, "%d %s -> %s\n", ins.AmountMinorUnits, ins.Currency, destination)
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
