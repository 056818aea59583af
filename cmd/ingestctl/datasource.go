package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/go-arcade/ingest/internal/console"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/spf13/cobra"
)

func dataSourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasource",
		Aliases: []string{"ds"},
		Short:   "manage data sources",
	}
	cmd.AddCommand(dsListCmd(), dsCreateCmd(), dsDeleteCmd(), dsMetadataCmd(), dsTestCmd())
	return cmd
}

func printDataSources(cmd *cobra.Command, v any, items []console.DataSource) error {
	return render(cmd.OutOrStdout(), v, func(tw *tabwriter.Writer) {
		row(tw, "ID", "NAME", "TYPE", "DESCRIPTION", "CREATED")
		for _, ds := range items {
			row(tw, ds.ID, ds.Name, ds.Type, dash(ds.Description), ds.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	})
}

func dsListCmd() *cobra.Command {
	var (
		name, typ   string
		skip, limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list data sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := newClient().ListDataSources(cmd.Context(), name, typ, skip, limit)
			if err != nil {
				return err
			}
			return printDataSources(cmd, page, page.Data)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "substring of the name")
	cmd.Flags().StringVar(&typ, "type", "", "mysql, clickhouse, minio or csv")
	cmd.Flags().IntVar(&skip, "skip", 0, "rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "rows to return")
	return cmd
}

// parseFields turns key=value pairs into connection fields, numeric values
// stay numeric.
func parseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid field %q, want key=value", p)
		}
		var n json.Number
		if err := json.Unmarshal([]byte(v), &n); err == nil {
			fields[k] = n
			continue
		}
		fields[k] = v
	}
	return fields, nil
}

func dsCreateCmd() *cobra.Command {
	var (
		ds     console.DataSource
		typ    string
		fields []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "register a data source",
		Example: `  ingestctl ds create --name orders --type mysql \
    --field host=127.0.0.1 --field port=3306 --field user=root --field password=secret --field database=shop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := parseFields(fields)
			if err != nil {
				return err
			}
			if ds.ConnectionInfo, err = json.Marshal(info); err != nil {
				return err
			}
			ds.Type = taskconf.SourceType(typ)
			created, err := newClient().CreateDataSource(cmd.Context(), &ds)
			if err != nil {
				return err
			}
			return printDataSources(cmd, created, []console.DataSource{*created})
		},
	}
	cmd.Flags().StringVar(&ds.Name, "name", "", "data source name")
	cmd.Flags().StringVar(&ds.Description, "description", "", "free text")
	cmd.Flags().StringVar(&typ, "type", string(taskconf.SourceMySQL), "mysql, clickhouse, minio or csv")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "connection field as key=value, repeatable")
	return cmd
}

func dsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "delete a data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := newClient().DeleteDataSource(cmd.Context(), ids[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "data source %d deleted\n", ids[0])
			return nil
		},
	}
}

func dsMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables ID",
		Short: "list the tables or buckets of a data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			tables, err := newClient().DataSourceMetadata(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), map[string]any{"tables": tables}, func(tw *tabwriter.Writer) {
				row(tw, "TABLE")
				for _, t := range tables {
					row(tw, t)
				}
			})
		},
	}
}

func dsTestCmd() *cobra.Command {
	var (
		typ    string
		fields []string
	)
	cmd := &cobra.Command{
		Use:   "test",
		Short: "test connection fields without saving them",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseFields(fields)
			if err != nil {
				return err
			}
			body["type"] = typ
			res, err := newClient().TestConnection(cmd.Context(), body)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), res, func(tw *tabwriter.Writer) {
				row(tw, "STATUS", "MESSAGE")
				row(tw, res.Status, res.Message)
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(taskconf.SourceMySQL), "mysql, clickhouse, minio or csv")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "connection field as key=value, repeatable")
	return cmd
}
