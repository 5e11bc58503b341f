package maintenance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shelfwise/shelfwise-backend/src/app"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"github.com/spf13/cobra"
)

// ErrFindings is returned by validate when unfixed findings remain, so the exit status is non-zero.
var ErrFindings = errors.New("invariant violations found")

func (c *CLI) validateCommand() *cobra.Command {
	var shelfID int
	var fix bool
	var strategy string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report every invariant violation on one shelf or all active shelves",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := services.ValidateOptions{Fix: fix}
			if strategy != "" {
				s, err := planogram.ParseStrategy(strategy)
				if err != nil {
					return err
				}
				opts.Strategy = s
			}

			return c.withApp(cmd.Context(), func(a *app.App) error {
				var reports []services.ShelfReport
				if shelfID != 0 {
					r, err := a.Maintenance.ValidateShelf(cmd.Context(), shelfID, opts)
					if err != nil {
						return err
					}
					reports = append(reports, *r)
				} else {
					var err error
					if reports, err = a.Maintenance.ValidateAll(cmd.Context(), opts); err != nil {
						return err
					}
				}

				healthy := true
				for i := range reports {
					WriteReport(c.out, &reports[i], c.verbose)
					healthy = healthy && reports[i].Healthy()
				}
				if !healthy {
					return ErrFindings
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&shelfID, "shelf-id", 0, "shelf to validate (default all active shelves)")
	cmd.Flags().BoolVar(&fix, "fix", false, "rewrite drifted occupied widths")
	cmd.Flags().StringVar(&strategy, "strategy", "", "also resolve overlaps: compact, spread or delete_duplicates")
	return cmd
}

func (c *CLI) fixOverlapsCommand() *cobra.Command {
	var shelfID int
	var dryRun bool
	var strategy string

	cmd := &cobra.Command{
		Use:   "fix-overlaps",
		Short: "Resolve overlapping placements on one shelf or all active shelves",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := planogram.ParseStrategy(strategy)
			if err != nil {
				return err
			}

			return c.withApp(cmd.Context(), func(a *app.App) error {
				ids := []int{shelfID}
				if shelfID == 0 {
					shelves, err := a.Shelves.ListShelves(cmd.Context())
					if err != nil {
						return err
					}
					ids = ids[:0]
					for _, sh := range shelves {
						ids = append(ids, sh.ID)
					}
				}

				for _, id := range ids {
					res, err := a.Maintenance.ResolveShelf(cmd.Context(), id, s, dryRun)
					if err != nil {
						return err
					}
					WriteResolution(c.out, res)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&shelfID, "shelf-id", 0, "shelf to fix (default all active shelves)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without changing anything")
	cmd.Flags().StringVar(&strategy, "strategy", string(planogram.StrategyCompact), "compact, spread or delete_duplicates")
	return cmd
}

func (c *CLI) resetCommand() *cobra.Command {
	var shelfID int
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-placements",
		Short: "Remove every placement on a shelf",
		RunE: func(cmd *cobra.Command, args []string) error {
			if shelfID == 0 {
				return errors.New("--shelf-id is required")
			}
			if !yes && !Confirm(c.in, c.out, fmt.Sprintf("Remove all placements on shelf %d?", shelfID)) {
				c.printf("aborted\n")
				return nil
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				removed, err := a.Placements.ClearAll(cmd.Context(), shelfID)
				if err != nil {
					return err
				}
				c.printf("removed %d placements from shelf %d\n", removed, shelfID)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&shelfID, "shelf-id", 0, "shelf to reset")
	cmd.Flags().BoolVar(&yes, "confirm", false, "skip the confirmation prompt")
	return cmd
}

func (c *CLI) seedCommand() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "seed-sample",
		Short: "Create the sample drinks shelf and its products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if clear {
					if err := a.Seeder.Clear(cmd.Context()); err != nil {
						return err
					}
					c.printf("cleared existing sample data\n")
				}
				res, err := a.Seeder.Sample(cmd.Context())
				if err != nil {
					return err
				}
				if res.Existing {
					c.printf("sample shelf %q already exists (id %d)\n", res.Shelf.Name, res.Shelf.ID)
					return nil
				}
				c.printf("created %d products, shelf %q (id %d) and %d placements\n",
					res.Products, res.Shelf.Name, res.Shelf.ID, res.Placements)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "delete existing sample data first")
	return cmd
}

func (c *CLI) importCommand() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "import-products <file.xlsx>",
		Short: "Upsert products from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return c.withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Products.ImportFromExcel(cmd.Context(), f, sheet)
				if err != nil {
					return err
				}
				c.printf("imported %d, updated %d, %d errors\n", res.Imported, res.Updated, len(res.Errors))
				for _, e := range res.Errors {
					c.printf("  %s\n", e)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name (default first sheet)")
	return cmd
}

func (c *CLI) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// app.Open migrates before handing the connection over
			return c.withApp(cmd.Context(), func(a *app.App) error {
				c.printf("schema up to date\n")
				return nil
			})
		},
	}
}

func (c *CLI) createUserCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login account unless it already exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Users.EnsureUser(cmd.Context(), username, password); err != nil {
					return err
				}
				c.printf("user %q ready\n", username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", os.Getenv("ADMIN_USERNAME"), "login name")
	cmd.Flags().StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "password")
	return cmd
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
