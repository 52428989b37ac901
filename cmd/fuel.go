package cmd

import (
	"io"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newFuelCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fuel",
		Aliases: []string{"fuel-requests"},
		Short:   "Manage fuel requests",
	}

	cmd.AddCommand(
		newFuelListCmd(app),
		newFuelGetCmd(app),
		newFuelCreateCmd(app),
		newFuelUpdateCmd(app),
		newFuelDeleteCmd(app),
		newFuelStatusCmd(app),
		newFuelAssignCmd(app),
	)

	return cmd
}

func newFuelListCmd(app *app) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fuel requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.FuelRequestFilter{Limit: limit}
			if status != "" {
				parsed, err := domain.ParseFuelRequestStatus(status)
				if err != nil {
					return err
				}
				filter.Status = parsed
			}

			requests, err := app.api.FuelRequests.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return app.emit(cmd, requests, func(w io.Writer) error {
				rows := make([][]string, 0, len(requests))
				for _, r := range requests {
					rows = append(rows, []string{
						r.ID,
						r.FuelType,
						formatQuantity(r.Quantity, r.Unit),
						string(r.Status),
						formatDate(r.PreferredDate),
						formatDate(r.CreatedAt),
					})
				}
				return writeTable(w, "No fuel requests.", []string{"ID", "FUEL", "QUANTITY", "STATUS", "DELIVERY", "CREATED"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only requests in this status")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of requests")

	return cmd
}

func newFuelGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one fuel request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := app.api.FuelRequests.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.emit(cmd, request, func(w io.Writer) error {
				return writeFuelRequest(w, request)
			})
		},
	}
}

type fuelInputFlags struct {
	fuelType string
	quantity float64
	unit     string
	address  string
	date     string
	urgency  string
	notes    string
}

func (f *fuelInputFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.fuelType, "fuel-type", "", "biogas, biomethane, compost or bio-slurry")
	flags.Float64Var(&f.quantity, "quantity", 0, "Requested quantity")
	flags.StringVar(&f.unit, "unit", "", "kg, m3 or litres")
	flags.StringVar(&f.address, "address", "", "Delivery address")
	flags.StringVar(&f.date, "date", "", "Preferred delivery date (YYYY-MM-DD)")
	flags.StringVar(&f.urgency, "urgency", "", "low, medium or high")
	flags.StringVar(&f.notes, "notes", "", "Notes for the producer")
}

func (f *fuelInputFlags) input() (domain.FuelRequestInput, error) {
	date, err := parseDate("date", f.date)
	if err != nil {
		return domain.FuelRequestInput{}, err
	}

	return domain.FuelRequestInput{
		FuelType:        f.fuelType,
		Quantity:        f.quantity,
		Unit:            f.unit,
		DeliveryAddress: f.address,
		PreferredDate:   date,
		Urgency:         f.urgency,
		Notes:           f.notes,
	}, nil
}

func newFuelCreateCmd(app *app) *cobra.Command {
	var flags fuelInputFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a fuel request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}

			request, err := app.api.FuelRequests.Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			return app.emit(cmd, request, func(w io.Writer) error {
				return writeFuelRequest(w, request)
			})
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func newFuelUpdateCmd(app *app) *cobra.Command {
	var flags fuelInputFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the details of a fuel request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}

			request, err := app.api.FuelRequests.Update(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}

			return app.emit(cmd, request, func(w io.Writer) error {
				return writeFuelRequest(w, request)
			})
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func newFuelDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a fuel request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.api.FuelRequests.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.done(cmd, "Deleted fuel request %s", args[0])
		},
	}
}

func newFuelStatusCmd(app *app) *cobra.Command {
	var status string
	var notes string

	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Move a fuel request to a new status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := domain.ParseFuelRequestStatus(status)
			if err != nil {
				return err
			}

			request, err := app.api.FuelRequests.UpdateStatus(cmd.Context(), args[0], parsed, notes)
			if err != nil {
				return err
			}
			if request.ID == "" {
				return app.done(cmd, "Fuel request %s is now %s", args[0], parsed)
			}

			return app.emit(cmd, request, func(w io.Writer) error {
				return writeFuelRequest(w, request)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&notes, "notes", "", "Reason or remarks")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newFuelAssignCmd(app *app) *cobra.Command {
	var producerID string

	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign a fuel request to a producer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := app.api.FuelRequests.Assign(cmd.Context(), args[0], producerID)
			if err != nil {
				return err
			}
			if request.ID == "" {
				return app.done(cmd, "Assigned fuel request %s to producer %s", args[0], producerID)
			}

			return app.emit(cmd, request, func(w io.Writer) error {
				return writeFuelRequest(w, request)
			})
		},
	}

	cmd.Flags().StringVar(&producerID, "producer", "", "Producer user ID")
	_ = cmd.MarkFlagRequired("producer")

	return cmd
}

func writeFuelRequest(w io.Writer, r domain.FuelRequest) error {
	return writeFields(w, []field{
		{"id", r.ID},
		{"fuel", r.FuelType},
		{"quantity", formatQuantity(r.Quantity, r.Unit)},
		{"status", string(r.Status)},
		{"urgency", r.Urgency},
		{"address", r.DeliveryAddress},
		{"delivery", formatDate(r.PreferredDate)},
		{"producer", r.ProducerID},
		{"notes", r.Notes},
		{"created", formatDate(r.CreatedAt)},
	})
}
