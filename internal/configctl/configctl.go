// Package configctl команды обслуживания сохранённых конфигураций без
// запуска бота.
package configctl

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/service/profile"
)

var errNoUsers = errors.New("no users: pass --user or set OWNER_IDS")

type Store interface {
	profile.Store
	Migrate(ctx context.Context, userID int64) (bool, error)
	Export(ctx context.Context, userID int64) ([]byte, error)
}

// Opener открывает хранилище на время выполнения команды.
type Opener func(ctx context.Context) (Store, func(), error)

type commands struct {
	open     Opener
	owners   []int64
	userIDs  []int64
	inactive bool
}

// NewRootCommand owners используются, когда --user не задан.
func NewRootCommand(open Opener, owners ...int64) *cobra.Command {
	c := &commands{open: open, owners: owners}

	root := &cobra.Command{
		Use:           "configctl",
		Short:         "Inspect and maintain stored purchase configurations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Int64SliceVar(&c.userIDs, "user", nil, "user id, repeatable; defaults to OWNER_IDS")

	root.AddCommand(c.showCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.activateCommand())

	return root
}

func (c *commands) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the repaired configuration document",
		Args:  cobra.NoArgs,
		RunE: c.forEachUser(func(cmd *cobra.Command, store Store, userID int64) error {
			doc, err := store.Export(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("store.Export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", doc)

			return nil
		}),
	}
}

func (c *commands) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Convert legacy single-profile documents to the current format",
		Args:  cobra.NoArgs,
		RunE: c.forEachUser(func(cmd *cobra.Command, store Store, userID int64) error {
			migrated, err := store.Migrate(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("store.Migrate: %w", err)
			}

			if migrated {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: migrated\n", userID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: up to date\n", userID)
			}

			return nil
		}),
	}
}

func (c *commands) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset counters of every profile and deactivate purchasing",
		Args:  cobra.NoArgs,
		RunE: c.forEachUser(func(cmd *cobra.Command, store Store, userID int64) error {
			cfg, err := profile.NewService(store).Reset(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("profileService.Reset: %w", err)
			}

			printState(cmd, cfg)

			return nil
		}),
	}
}

func (c *commands) activateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Turn purchasing on, or off with --off",
		Args:  cobra.NoArgs,
		RunE: c.forEachUser(func(cmd *cobra.Command, store Store, userID int64) error {
			cfg, err := profile.NewService(store).SetActive(cmd.Context(), userID, !c.inactive)
			if err != nil {
				return fmt.Errorf("profileService.SetActive: %w", err)
			}

			printState(cmd, cfg)

			return nil
		}),
	}

	cmd.Flags().BoolVar(&c.inactive, "off", false, "deactivate instead of activating")

	return cmd
}

func (c *commands) forEachUser(
	fn func(cmd *cobra.Command, store Store, userID int64) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		userIDs := c.userIDs
		if len(userIDs) == 0 {
			userIDs = c.owners
		}

		if len(userIDs) == 0 {
			return errNoUsers
		}

		store, closeStore, err := c.open(cmd.Context())
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer closeStore()

		for _, userID := range userIDs {
			if err = fn(cmd, store, userID); err != nil {
				return fmt.Errorf("user %d: %w", userID, err)
			}
		}

		return nil
	}
}

func printState(cmd *cobra.Command, cfg entity.Configuration) {
	state := "inactive"
	if cfg.Active {
		state = "active"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d: %s, %d profile(s)\n", cfg.UserID, state, len(cfg.Profiles))
}
