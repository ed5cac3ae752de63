package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx"

	"github.com/ilyalavrinov/kubreminder/internal/kubreminder/lessons"
)

func newListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all lessons in stored order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flags.openStore(cmd.Context())
			if err != nil {
				return err
			}
			entries := store.All()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No lessons")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Date", "Time", "Description", "Reminded"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.Position, e.Date, e.Time, e.Description, e.Reminded})
			}
			t.AppendFooter(table.Row{"", "", "", "Total", len(entries)})
			t.Render()
			return nil
		},
	}
}

func newAddCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <YYYY-MM-DD> <HH:MM> <description...>",
		Short: "Append a lesson",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flags.openStore(cmd.Context())
			if err != nil {
				return err
			}
			added, err := store.Add(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d: %s %s %s\n", added.Position, added.Date, added.Time, added.Description)
			return nil
		},
	}
}

func newDeleteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete the lesson with the number shown by list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: lesson number %q", lessons.ErrFormat, args[0])
			}
			store, err := flags.openStore(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := store.Delete(cmd.Context(), position)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s %s %s\n", removed.Date, removed.Time, removed.Description)
			return nil
		},
	}
}

func newExportCommand(flags *globalFlags) *cobra.Command {
	var xlsxName string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export lessons to a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flags.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeToXlsx(xlsxName, store.All()); err != nil {
				return fmt.Errorf("could not write xlsx file %q: %w", xlsxName, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d lessons to %s\n", store.Len(), xlsxName)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxName, "xlsx", "lessons.xlsx", "output file")
	return cmd
}

func writeToXlsx(filename string, entries []lessons.Entry) error {
	xls := xlsx.NewFile()
	sh, err := xls.AddSheet("lessons")
	if err != nil {
		return err
	}

	for x, title := range []string{"#", "Date", "Time", "Description", "Reminded"} {
		sh.Cell(0, x).SetString(title)
	}

	remindedStyle := xlsx.NewStyle()
	remindedStyle.ApplyFill = true
	remindedStyle.Fill.PatternType = xlsx.Solid_Cell_Fill
	remindedStyle.Fill.FgColor = xlsx.RGB_Light_Green

	for y, e := range entries {
		row := y + 1
		sh.Cell(row, 0).SetInt(e.Position)
		sh.Cell(row, 1).SetString(e.Date)
		sh.Cell(row, 2).SetString(e.Time)
		sh.Cell(row, 3).SetString(e.Description)
		c := sh.Cell(row, 4)
		c.SetBool(e.Reminded)
		if e.Reminded {
			c.SetStyle(remindedStyle)
		}
	}

	return xls.Save(filename)
}
