package cmd

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/routes"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the dashboard summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Dashboard, func(a *app.App, view *app.View) error {
			stats, err := a.LoadDashboard(view.Context())
			if err != nil {
				return err
			}
			return render(cmd, stats, func(w io.Writer) error {
				title := "Dashboard"
				if u := a.Session.User(); u != nil {
					title += " - " + u.FullName
				}
				err := writeFields(w, title, [][2]string{
					{"Countries", strconv.Itoa(stats.TotalCountries)},
					{"Projects", strconv.Itoa(stats.TotalProjects)},
					{"Active scenarios", strconv.Itoa(stats.ActiveScenarios)},
					{"Pending analyses", strconv.Itoa(stats.PendingAnalyses)},
				})
				if err != nil || len(stats.RecentProjects) == 0 {
					return err
				}
				io.WriteString(w, "\n")
				return writeTable(w, projectHeader, projectRows(stats.RecentProjects))
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
