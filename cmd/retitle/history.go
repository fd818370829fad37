package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/Veraticus/retitle/internal/cli"
	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/model"
	"github.com/Veraticus/retitle/internal/service"
)

const (
	defaultHistoryLimit = 20
	maxTableNameWidth   = 40
)

var (
	revertedColor = color.New(color.FgHiBlack)
	appliedColor  = color.New(color.FgGreen)
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List applied renames",
		Long: `History lists the rename log, newest first. Reverted renames are marked so the
remaining ones can be undone with retitle revert.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit, "number of entries to show (0 for all)")
	cmd.Flags().Bool("json", false, "print entries as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rows, err := loadHistory(ctx, store, limit)
	if err != nil {
		return err
	}

	if asJSON {
		return writeHistoryJSON(cmd.OutOrStdout(), rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No renames logged yet")
		return nil
	}
	return writeHistoryTable(cmd.OutOrStdout(), rows, time.Now())
}

// historyRow is a log entry with its revert status.
type historyRow struct {
	model.RenameLogEntry
	Reverted bool `json:"reverted"`
}

func loadHistory(ctx context.Context, store service.RenameLogStore, limit int) ([]historyRow, error) {
	entries, err := store.ListRenameLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rename log: %w", err)
	}

	rows := make([]historyRow, 0, len(entries))
	for _, entry := range entries {
		reverted, err := store.IsReverted(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, historyRow{RenameLogEntry: entry, Reverted: reverted})
	}

	common.LogDebug("Loaded rename history", common.Fields{"entries": len(rows), "limit": limit})
	return rows, nil
}

func writeHistoryJSON(w io.Writer, rows []historyRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeHistoryTable(w io.Writer, rows []historyRow, now time.Time) error {
	fmt.Fprintln(w, cli.FormatTitle("Rename history"))

	table := tablewriter.NewWriter(w)

	table.Header([]string{"ID", "When", "Original", "New", "Approved", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			humanize.RelTime(r.AcceptedAt, now, "ago", "from now"),
			truncateName(r.OriginalRelativePath, maxTableNameWidth),
			truncateName(r.NewName, maxTableNameWidth),
			approvalLabel(r.Confirmation),
			statusLabel(r.Reverted),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func approvalLabel(source model.ConfirmationSource) string {
	if source == model.ConfirmedByForce {
		return "forced"
	}
	return "confirmed"
}

func statusLabel(reverted bool) string {
	if reverted {
		return revertedColor.Sprint("reverted")
	}
	return appliedColor.Sprint("applied")
}

// truncateName keeps the tail of long names, where the distinguishing part usually is.
func truncateName(name string, width int) string {
	runes := []rune(name)
	if len(runes) <= width {
		return name
	}
	return "..." + string(runes[len(runes)-width+3:])
}
