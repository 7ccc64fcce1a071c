package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"weighttrack/internal/app"
	"weighttrack/internal/domain"
	"weighttrack/internal/tui"
)

var (
	listSort string
	listDesc bool

	addWeight string
	addDate   string

	editWeight string
	editDate   string

	chartWidth  int
	chartHeight int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the weight history",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new weight entry",
	Example: `  weighttrack add --weight 72.5
  weighttrack add --weight 72.5 --date 01/01/2024`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change the weight or date of an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete an entry",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Plot weight over time",
	Args:  cobra.NoArgs,
	RunE:  runChart,
}

func init() {
	listCmd.Flags().StringVar(&listSort, "sort", "date", "Sort by date or weight")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "Sort in descending order")

	addCmd.Flags().StringVar(&addWeight, "weight", "", "Weight in kilograms")
	addCmd.Flags().StringVar(&addDate, "date", "", "Date as YYYY-MM-DD or DD/MM/YYYY (default today)")
	_ = addCmd.MarkFlagRequired("weight")

	editCmd.Flags().StringVar(&editWeight, "weight", "", "New weight in kilograms")
	editCmd.Flags().StringVar(&editDate, "date", "", "New date")

	chartCmd.Flags().IntVar(&chartWidth, "width", 60, "Plot width in columns")
	chartCmd.Flags().IntVar(&chartHeight, "height", 12, "Plot height in rows")

	rootCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, chartCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	field, ok := app.ParseSortField(listSort)
	if !ok {
		return fmt.Errorf("invalid sort field %q: must be date or weight", listSort)
	}

	s, err := openSession(cmd.Context(), app.NewWriterNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.tracker.Init(cmd.Context()); err != nil {
		return reported(err)
	}

	entries := app.SortEntries(s.tracker.Entries(), field, listDesc)
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No entries yet.")
		return nil
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "WEIGHT ("+strings.ToUpper(s.cfg.Unit)+")")
	for _, r := range app.HistoryRows(entries, s.cfg.Unit) {
		t.Row(r.ID, r.Date, r.Weight)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), app.NewWriterNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	date := addDate
	if date == "" {
		date = time.Now().Format(domain.ISODate)
	}
	s.tracker.SetWeight(addWeight)
	s.tracker.SetDate(date)
	return reported(s.tracker.Submit(cmd.Context()))
}

func runEdit(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), app.NewWriterNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.tracker.Init(cmd.Context()); err != nil {
		return reported(err)
	}
	var entry *domain.WeightEntry
	for _, e := range s.tracker.Entries() {
		if e.ID == args[0] {
			entry = &e
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("no entry with id %q", args[0])
	}

	s.tracker.BeginEdit(*entry)
	if cmd.Flags().Changed("weight") {
		s.tracker.SetWeight(editWeight)
	}
	if cmd.Flags().Changed("date") {
		s.tracker.SetDate(editDate)
	}
	return reported(s.tracker.Submit(cmd.Context()))
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), app.NewWriterNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	return reported(s.tracker.Remove(cmd.Context(), args[0]))
}

func runChart(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), app.NewWriterNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.tracker.Init(cmd.Context()); err != nil {
		return reported(err)
	}
	series := app.BuildSeries(s.tracker.Entries(), s.cfg.Unit)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), tui.RenderChart(series, chartWidth, chartHeight))
	return nil
}
