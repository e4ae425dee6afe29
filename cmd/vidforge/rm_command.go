package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidforge/internal/catalog"
	"vidforge/internal/logging"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a record and all of its blobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manager, store, err := buildManager(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := manager.Delete(cmd.Context(), id); err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return fmt.Errorf("record %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed record %d\n", id)
			return nil
		},
	}
}
