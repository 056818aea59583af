package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-arcade/ingest/internal/console"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/spf13/cobra"
)

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "create, run and watch sync tasks",
	}
	cmd.AddCommand(taskListCmd(), taskGetCmd(), taskCreateCmd(), taskRunCmd(), taskDeleteCmd(), taskWatchCmd())
	return cmd
}

func parseIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printTasks(cmd *cobra.Command, v any, tasks []console.Task, errs map[uint64]string) error {
	return render(cmd.OutOrStdout(), v, func(tw *tabwriter.Writer) {
		row(tw, "ID", "NAME", "TYPE", "STATUS", "PROGRESS", "VERIFICATION", "SCHEDULE", "ERROR")
		for _, t := range tasks {
			row(tw, t.ID, t.Name, t.TaskType, t.Status, strconv.Itoa(t.Progress)+"%",
				t.VerificationStatus, dash(t.Schedule), dash(errs[t.ID]))
		}
	})
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func taskListCmd() *cobra.Command {
	var (
		name     string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list tasks with their failure causes",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := console.NewManager(newClient()).Subscribe(
				console.WithFilter(console.Filter{Name: name}),
				console.WithPage(page, pageSize),
			)
			snap, err := sub.Poll(cmd.Context())
			if err != nil {
				return err
			}
			return printTasks(cmd, snap, snap.Tasks, snap.Errors)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "substring of the task name")
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "tasks per page")
	return cmd
}

func taskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			task, err := newClient().GetTask(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			return printTasks(cmd, task, []console.Task{*task}, nil)
		},
	}
}

func taskCreateCmd() *cobra.Command {
	var (
		name       string
		taskType   string
		configFile string
		schedule   string
		sel        taskconf.SyncSelections
		mode       string
		toggles    taskconf.OperatorToggles
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "create a task from a config file or from sync selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := console.NewManager(newClient())
			tt := taskconf.TaskType(taskType)
			var opts []console.CreateOption
			if schedule != "" {
				opts = append(opts, console.WithSchedule(schedule))
			}

			var (
				task *console.Task
				err  error
			)
			switch {
			case configFile != "":
				data, rerr := os.ReadFile(configFile)
				if rerr != nil {
					return rerr
				}
				task, err = m.Create(cmd.Context(), name, tt, data, opts...)
			case tt == taskconf.TaskPreprocess:
				task, err = m.Create(cmd.Context(), name, tt, taskconf.DefaultPreprocessConfig(), opts...)
			default:
				sel.Mode = taskconf.SyncMode(mode)
				task, err = m.CreateFromSelections(cmd.Context(), name, tt, sel, toggles, opts...)
			}
			if err != nil {
				return err
			}
			return printTasks(cmd, task, []console.Task{*task}, nil)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "task name")
	f.StringVar(&taskType, "type", string(taskconf.TaskSync), "task type: sync, sync_process or preprocess")
	f.StringVarP(&configFile, "file", "f", "", "JSON config file, overrides the selection flags")
	f.StringVar(&schedule, "schedule", "", "cron schedule, e.g. \"0 2 * * *\"")
	f.Uint64Var(&sel.SourceID, "source", 0, "data source id")
	f.StringVar(&sel.SourceTable, "source-table", "", "source table, or bucket/object for minio")
	f.StringVar(&sel.TargetTable, "target-table", "", "target table")
	f.StringVar(&mode, "mode", string(taskconf.ModeAppend), "append or overwrite")
	f.BoolVar(&toggles.Explore, "explore", false, "profile the data")
	f.BoolVar(&toggles.Dedup, "dedup", false, "drop duplicate rows")
	f.BoolVar(&toggles.DropNA, "drop-na", false, "drop rows with missing values")
	f.BoolVar(&toggles.FillNA, "fill-na", false, "fill missing values, wins over --drop-na")
	f.StringVar(&toggles.FillValue, "fill-value", "0", "value used by --fill-na")
	f.BoolVar(&toggles.Outliers, "outliers", false, "remove outliers")
	f.BoolVar(&toggles.Standardize, "standardize", false, "standardize numeric columns")
	f.StringVar(&toggles.RenameMapping, "rename", "", "rename mapping, JSON object or old:new lines")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		toggles.Rename = cmd.Flags().Changed("rename")
	}
	return cmd
}

func taskRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run ID",
		Short: "start a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := console.NewManager(newClient()).Run(cmd.Context(), ids[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d started\n", ids[0])
			return nil
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "delete one or more tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			m := console.NewManager(newClient())
			if len(ids) == 1 {
				err = m.DeleteOne(cmd.Context(), ids[0])
			} else {
				err = m.DeleteMany(cmd.Context(), ids)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d task(s) deleted\n", len(ids))
			return nil
		},
	}
}

func taskWatchCmd() *cobra.Command {
	var (
		name     string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "poll the task list until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sub := console.NewManager(newClient()).Subscribe(
				console.WithFilter(console.Filter{Name: name}),
				console.WithPollInterval(interval),
				console.WithPollJitter(interval/10),
				console.OnUpdate(func(snap console.Snapshot) {
					fmt.Fprintf(cmd.OutOrStdout(), "\n# generation %d, %d task(s)\n", snap.Generation, snap.Total)
					_ = printTasks(cmd, snap, snap.Tasks, snap.Errors)
				}),
				console.OnError(func(err error) {
					fmt.Fprintln(cmd.ErrOrStderr(), "poll:", err)
				}),
			)
			if err := sub.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			sub.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "substring of the task name")
	cmd.Flags().DurationVar(&interval, "interval", console.DefaultPollInterval, "poll interval")
	return cmd
}

