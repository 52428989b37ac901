package cmd

import (
	"io"
	"strings"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newContentCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage educational content",
	}

	cmd.AddCommand(
		newContentListCmd(app),
		newContentGetCmd(app),
		newContentCreateCmd(app),
		newContentUpdateCmd(app),
		newContentDeleteCmd(app),
	)

	return cmd
}

func newContentListCmd(app *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := app.api.Content.List(cmd.Context(), category)
			if err != nil {
				return err
			}

			return app.emit(cmd, items, func(w io.Writer) error {
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.ID,
						item.Title,
						item.Category,
						formatBool(item.Published, "published", "draft"),
						formatDate(item.CreatedAt),
					})
				}
				return writeTable(w, "No content.", []string{"ID", "TITLE", "CATEGORY", "STATE", "CREATED"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "article, video, guide or faq")

	return cmd
}

func newContentGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := app.api.Content.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.emit(cmd, item, func(w io.Writer) error {
				return writeContent(w, item)
			})
		},
	}
}

func registerContentFlags(flags *pflag.FlagSet, input *domain.ContentInput) {
	flags.StringVar(&input.Title, "title", "", "Title")
	flags.StringVar(&input.Summary, "summary", "", "Short summary")
	flags.StringVar(&input.Body, "body", "", "Body text")
	flags.StringVar(&input.Category, "category", "", "article, video, guide or faq")
	flags.StringSliceVar(&input.Tags, "tag", nil, "Tag, repeatable")
	flags.BoolVar(&input.Published, "published", false, "Publish immediately")
}

func newContentCreateCmd(app *app) *cobra.Command {
	var input domain.ContentInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a content item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			item, err := app.api.Content.Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			return app.emit(cmd, item, func(w io.Writer) error {
				return writeContent(w, item)
			})
		},
	}

	registerContentFlags(cmd.Flags(), &input)

	return cmd
}

func newContentUpdateCmd(app *app) *cobra.Command {
	var input domain.ContentInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := app.api.Content.Update(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}

			return app.emit(cmd, item, func(w io.Writer) error {
				return writeContent(w, item)
			})
		},
	}

	registerContentFlags(cmd.Flags(), &input)

	return cmd
}

func newContentDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.api.Content.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.done(cmd, "Deleted content %s", args[0])
		},
	}
}

func writeContent(w io.Writer, item domain.Content) error {
	if err := writeFields(w, []field{
		{"id", item.ID},
		{"title", item.Title},
		{"category", item.Category},
		{"state", formatBool(item.Published, "published", "draft")},
		{"author", item.Author},
		{"tags", strings.Join(item.Tags, ", ")},
		{"summary", item.Summary},
	}); err != nil {
		return err
	}

	if item.Body == "" {
		return nil
	}

	_, err := io.WriteString(w, "\n"+item.Body+"\n")
	return err
}
