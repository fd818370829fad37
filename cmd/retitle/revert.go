package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/retitle/internal/cli"
	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/engine"
	"github.com/Veraticus/retitle/internal/model"
	"github.com/Veraticus/retitle/internal/service"
)

func revertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revert [id|latest]",
		Short: "Undo a logged rename",
		Long: `Revert moves a renamed file back to its original path and journals the revert.
Without an argument the most recent rename that has not been reverted is undone.`,
		Example: `  # Undo the most recent rename
  retitle revert latest

  # Print the shell command for entry 42 instead of running it
  retitle revert 42 --print`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRevert,
	}

	cmd.Flags().Bool("print", false, "print the revert command instead of running it")
	cmd.Flags().Bool("relative", false, "print the command with paths relative to where the rename ran")

	return cmd
}

func runRevert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	printOnly, _ := cmd.Flags().GetBool("print")
	relative, _ := cmd.Flags().GetBool("relative")

	target := "latest"
	if len(args) == 1 {
		target = args[0]
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entry, err := findEntry(ctx, store, target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if printOnly {
		return printRevertCommand(out, entry, relative)
	}

	record, err := engine.NewReverter(store).Revert(ctx, entry)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyApplied):
			return common.NewUserError(fmt.Sprintf("rename %d was already reverted", entry.ID), err)
		case errors.Is(err, engine.ErrRevertConflict):
			return common.NewUserError(
				fmt.Sprintf("cannot revert rename %d: %s already exists", entry.ID, entry.OriginalPath), err)
		}
		return err
	}

	common.LogInfo("Reverted rename", common.Fields{"entry_id": record.EntryID, "path": entry.OriginalPath})
	fmt.Fprintln(out, cli.FormatSuccess("Reverted "+cli.FormatRename(entry.NewName, entry.OriginalName)))
	return nil
}

// findEntry resolves "latest" or a numeric log ID.
func findEntry(ctx context.Context, store service.RenameLogStore, target string) (*model.RenameLogEntry, error) {
	if target == "latest" {
		entry, err := store.LatestUnreverted(ctx)
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError("nothing to revert", err)
		}
		return entry, err
	}

	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil || id <= 0 {
		return nil, common.NewUserError(
			fmt.Sprintf("invalid rename ID %q", target),
			fmt.Errorf("%w: want a positive number or \"latest\"", common.ErrInvalidConfig))
	}

	entry, err := store.GetRenameLog(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(fmt.Sprintf("no rename with ID %d", id), err)
	}
	return entry, err
}

func printRevertCommand(w io.Writer, entry *model.RenameLogEntry, relative bool) error {
	command := entry.RevertCommand
	if relative && entry.RevertCommandRelative != "" {
		command = entry.RevertCommandRelative
	}
	_, err := fmt.Fprintln(w, command)
	return err
}
