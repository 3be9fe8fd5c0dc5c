package cmd

import (
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
)

type resolvedRoute struct {
	Requested string            `json:"requested" yaml:"requested"`
	Location  string            `json:"location" yaml:"location"`
	Route     string            `json:"route" yaml:"route"`
	Access    string            `json:"access" yaml:"access"`
	Params    map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Show where a dashboard path lands for the current session",
	Long: `Resolves a dashboard path through the route guards for the stored
session and prints the route that would render, without loading any data.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.Mount(args[0])
		if err != nil {
			return err
		}
		m := view.Match
		out := resolvedRoute{
			Requested: args[0],
			Location:  m.Path,
			Route:     m.Route.Name,
			Access:    m.Route.Access.String(),
			Params:    m.Params,
		}
		return render(cmd, out, func(w io.Writer) error {
			fields := [][2]string{
				{"Location", out.Location},
				{"Route", out.Route},
				{"Access", out.Access},
			}
			for _, k := range slices.Sorted(maps.Keys(out.Params)) {
				fields = append(fields, [2]string{k, out.Params[k]})
			}
			return writeFields(w, "", fields)
		})
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
