package cmd

import (
	"fmt"
	"io"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newWasteCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "waste",
		Aliases: []string{"waste-entries"},
		Short:   "Log and verify waste entries",
	}

	cmd.AddCommand(
		newWasteListCmd(app),
		newWasteGetCmd(app),
		newWasteCreateCmd(app),
		newWasteUpdateCmd(app),
		newWasteDeleteCmd(app),
		newWasteVerifyCmd(app),
	)

	return cmd
}

func newWasteListCmd(app *app) *cobra.Command {
	var filter domain.WasteEntryFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List waste entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Status = domain.VerificationStatus(status)

			entries, err := app.api.WasteEntries.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return app.emit(cmd, entries, func(w io.Writer) error {
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.ID,
						e.WasteType,
						formatQuantity(e.Quantity, e.Unit),
						e.Location,
						formatDate(e.CollectionDate),
						string(e.VerificationStatus),
						formatCoins(e.CoinsAwarded),
					})
				}
				return writeTable(w, "No waste entries.", []string{"ID", "TYPE", "QUANTITY", "LOCATION", "COLLECTED", "STATUS", "COINS"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "pending, verified or rejected")
	cmd.Flags().StringVar(&filter.WasteType, "type", "", "Only this waste type")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of entries")

	return cmd
}

func newWasteGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one waste entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.api.WasteEntries.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.emit(cmd, entry, func(w io.Writer) error {
				return writeWasteEntry(w, entry)
			})
		},
	}
}

type wasteInputFlags struct {
	wasteType   string
	quantity    float64
	unit        string
	location    string
	date        string
	description string
	imageURL    string
}

func (f *wasteInputFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.wasteType, "type", "", "food_waste, agricultural, animal_manure, garden_waste or other")
	flags.Float64Var(&f.quantity, "quantity", 0, "Collected quantity")
	flags.StringVar(&f.unit, "unit", "kg", "kg, tonnes or litres")
	flags.StringVar(&f.location, "location", "", "Collection location")
	flags.StringVar(&f.date, "date", "", "Collection date (YYYY-MM-DD)")
	flags.StringVar(&f.description, "description", "", "Free-form description")
	flags.StringVar(&f.imageURL, "image-url", "", "Photo of the collected waste")
}

func (f *wasteInputFlags) input() (domain.WasteEntryInput, error) {
	date, err := parseDate("date", f.date)
	if err != nil {
		return domain.WasteEntryInput{}, err
	}

	return domain.WasteEntryInput{
		WasteType:      f.wasteType,
		Quantity:       f.quantity,
		Unit:           f.unit,
		Location:       f.location,
		CollectionDate: date,
		Description:    f.description,
		ImageURL:       f.imageURL,
	}, nil
}

func newWasteCreateCmd(app *app) *cobra.Command {
	var flags wasteInputFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Log a waste entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}

			entry, err := app.api.WasteEntries.Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			return app.emit(cmd, entry, func(w io.Writer) error {
				return writeWasteEntry(w, entry)
			})
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func newWasteUpdateCmd(app *app) *cobra.Command {
	var flags wasteInputFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the details of a waste entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}

			entry, err := app.api.WasteEntries.Update(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}

			return app.emit(cmd, entry, func(w io.Writer) error {
				return writeWasteEntry(w, entry)
			})
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func newWasteDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a waste entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.api.WasteEntries.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.done(cmd, "Deleted waste entry %s", args[0])
		},
	}
}

func newWasteVerifyCmd(app *app) *cobra.Command {
	var decision domain.VerificationDecision
	var status string

	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Verify or reject a waste entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision.Status = domain.VerificationStatus(status)

			entry, err := app.api.WasteEntries.Verify(cmd.Context(), args[0], decision)
			if err != nil {
				return err
			}
			if entry.ID == "" {
				return app.done(cmd, "Waste entry %s marked %s", args[0], decision.Status)
			}

			return app.emit(cmd, entry, func(w io.Writer) error {
				return writeWasteEntry(w, entry)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "verified", "verified or rejected")
	cmd.Flags().StringVar(&decision.Notes, "notes", "", "Verification notes")

	return cmd
}

func writeWasteEntry(w io.Writer, e domain.WasteEntry) error {
	coins := ""
	if e.CoinsAwarded > 0 {
		coins = fmt.Sprintf("%d", e.CoinsAwarded)
	}

	return writeFields(w, []field{
		{"id", e.ID},
		{"type", e.WasteType},
		{"quantity", formatQuantity(e.Quantity, e.Unit)},
		{"location", e.Location},
		{"collected", formatDate(e.CollectionDate)},
		{"status", string(e.VerificationStatus)},
		{"notes", e.VerificationNotes},
		{"coins", coins},
		{"description", e.Description},
		{"image", e.ImageURL},
	})
}
