package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/go-arcade/ingest/internal/console"
	"github.com/spf13/cobra"
)

func auditCmd() *cobra.Command {
	var q console.AuditQuery
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "list audit log entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := newClient().ListAudit(cmd.Context(), q)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), page, func(tw *tabwriter.Writer) {
				row(tw, "TIME", "USER", "ACTION", "RESOURCE", "DETAILS")
				for _, e := range page.Items {
					row(tw, e.Timestamp.Format("2006-01-02 15:04:05"), e.UserID, e.Action, e.Resource, dash(e.Details))
				}
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.UserID, "user", "", "filter by user id")
	f.StringVar(&q.Action, "action", "", "filter by action, e.g. task_failed")
	f.StringVar(&q.Resource, "resource", "", "filter by resource name")
	f.IntVar(&q.Skip, "skip", 0, "entries to skip")
	f.IntVar(&q.Limit, "limit", 100, "entries to return")
	return cmd
}

func assetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "list synced tables, buckets and local data files",
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := newClient().ListAssets(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), assets, func(tw *tabwriter.Writer) {
				row(tw, "ID", "NAME", "TYPE", "SOURCE", "ROWS", "SIZE", "PATH")
				for _, a := range assets {
					row(tw, a.ID, a.Name, a.Type, a.Source, a.Rows, a.Size, a.Path)
				}
			})
		},
	}
	cmd.AddCommand(assetPreviewCmd(), assetDeleteCmd())
	return cmd
}

func assetPreviewCmd() *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "show one page of a table, bucket or data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newClient().PreviewAsset(cmd.Context(), args[0], offset, limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), p, func(tw *tabwriter.Writer) {
				header := make([]any, 0, len(p.Columns))
				for _, c := range p.Columns {
					header = append(header, strings.ToUpper(c))
				}
				row(tw, header...)
				for _, r := range p.Data {
					cells := make([]any, 0, len(p.Columns))
					for _, c := range p.Columns {
						cells = append(cells, dash(fmt.Sprint(valueOr(r[c]))))
					}
					row(tw, cells...)
				}
				fmt.Fprintf(tw, "(%d of %d rows)\n", len(p.Data), p.Total)
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show")
	return cmd
}

func assetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name-or-id>",
		Short: "drop a synced table or bucket, or remove a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteAsset(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "asset %s deleted\n", args[0])
			return nil
		},
	}
}

func valueOr(v any) any {
	if v == nil {
		return ""
	}
	return v
}
