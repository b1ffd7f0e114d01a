package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tvshell/internal/app"
	"tvshell/internal/prefs"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(8)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func newPrefsCommand(flags *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show the stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			a := app.New(cfg)
			defer a.Shutdown()

			if all {
				rows, err := a.StoredSettings(cmd.Context())
				if err != nil {
					return err
				}
				renderRows(cmd.OutOrStdout(), rows)
				return nil
			}

			r, err := a.Resolver()
			if err != nil {
				return err
			}
			renderRecord(cmd.OutOrStdout(), r.LoadDefaults(cmd.Context()), r.Dimensions())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list the raw stored rows instead of the resolved record")
	return cmd
}

func renderRecord(w io.Writer, rec prefs.Record, dimensions bool) {
	body := labelStyle.Render("URL") + rec.URL
	if dimensions {
		body += "\n" + labelStyle.Render("Width") + fmt.Sprint(rec.Width)
		body += "\n" + labelStyle.Render("Height") + fmt.Sprint(rec.Height)
	}
	fmt.Fprintln(w, boxStyle.Render(body))
}

// renderRows 按键名排序输出原始存储内容
func renderRows(w io.Writer, rows map[string]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no stored preferences")
		return
	}
	keyStyle := labelStyle.Width(14)
	var body string
	for i, k := range slices.Sorted(maps.Keys(rows)) {
		if i > 0 {
			body += "\n"
		}
		body += keyStyle.Render(k) + rows[k]
	}
	fmt.Fprintln(w, boxStyle.Render(body))
}
