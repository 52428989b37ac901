package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
)

const autoIdempotencyKey = "auto"

func newRewardsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Show and convert reward coins",
	}

	cmd.AddCommand(
		newRewardsShowCmd(app),
		newRewardsHistoryCmd(app),
		newRewardsConvertCmd(app),
	)

	return cmd
}

func newRewardsShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the coin balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var summary domain.RewardSummary
			err := app.fetchWithSpinner(cmd, "Fetching rewards...", func(ctx context.Context) error {
				var err error
				summary, err = app.api.Rewards.Summary(ctx)
				return err
			})
			if err != nil {
				return err
			}

			return app.emit(cmd, summary, func(w io.Writer) error {
				return writeFields(w, []field{
					{"coins", fmt.Sprintf("%d", summary.Coins)},
					{"cash value", formatCash(summary.CashValue, summary.Currency)},
					{"rate", formatRate(summary.ConversionRate, summary.Currency)},
					{"earned", formatCoins(summary.TotalEarned)},
					{"converted", formatCoins(summary.TotalConverted)},
				})
			})
		},
	}
}

func newRewardsHistoryCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List coin transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			transactions, err := app.api.Rewards.History(cmd.Context())
			if err != nil {
				return err
			}

			return app.emit(cmd, transactions, func(w io.Writer) error {
				rows := make([][]string, 0, len(transactions))
				for _, tx := range transactions {
					rows = append(rows, []string{
						formatDate(tx.CreatedAt),
						tx.Type,
						fmt.Sprintf("%+d", tx.Coins),
						formatCash(tx.CashAmount, ""),
						tx.Description,
					})
				}
				return writeTable(w, "No transactions yet.", []string{"DATE", "TYPE", "COINS", "CASH", "DESCRIPTION"}, rows)
			})
		},
	}
}

func newRewardsConvertCmd(app *app) *cobra.Command {
	var coins int64
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert coins to cash",
		Long:  "Convert coins to cash. A conversion is only retried after a transient failure when it carries an idempotency key; pass --idempotency-key auto to generate one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := strings.TrimSpace(idempotencyKey)
			if strings.EqualFold(key, autoIdempotencyKey) {
				key = app.idempotencyKey()
			}

			result, err := app.api.Rewards.Convert(cmd.Context(), domain.ConversionRequest{Coins: coins}, key)
			if err != nil {
				return err
			}

			return app.emit(cmd, result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "✓ Converted %d coins to %s, %d coins left\n", result.ConvertedCoins, formatCash(result.CashAmount, ""), result.RemainingCoins)
				if err == nil && result.Reference != "" {
					_, err = fmt.Fprintf(w, "  reference %s\n", result.Reference)
				}
				return err
			})
		},
	}

	cmd.Flags().Int64Var(&coins, "coins", 0, "Number of coins to convert")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Key that makes retries safe; \"auto\" generates one")
	_ = cmd.MarkFlagRequired("coins")

	return cmd
}

func formatCash(amount float64, currency string) string {
	if amount == 0 {
		return ""
	}
	if currency == "" {
		currency = "RWF"
	}

	return fmt.Sprintf("%.2f %s", amount, currency)
}

func formatRate(rate float64, currency string) string {
	if rate == 0 {
		return ""
	}
	if currency == "" {
		currency = "RWF"
	}

	return fmt.Sprintf("1 coin = %g %s", rate, currency)
}
