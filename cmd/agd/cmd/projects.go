package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
)

var (
	projectSearch string
	projectStatus string
	projectLimit  int

	projectInput models.ProjectCreate
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage analysis projects",
}

func projectRows(list []models.Project) [][]string {
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{
			p.ID, p.Name, string(p.Status), orDash(p.Classification), orDash(p.RegionFocus),
			strconv.Itoa(len(p.Scenarios)), p.UpdatedAt.Format("2006-01-02"),
		})
	}
	return rows
}

var projectHeader = []string{"ID", "NAME", "STATUS", "CLASSIFICATION", "REGION", "SCENARIOS", "UPDATED"}

func renderProject(cmd *cobra.Command, p *models.Project) error {
	return render(cmd, p, func(w io.Writer) error {
		err := writeFields(w, p.Name, [][2]string{
			{"ID", p.ID},
			{"Status", string(p.Status)},
			{"Classification", p.Classification},
			{"Region", p.RegionFocus},
			{"Tags", strings.Join(p.Tags, ", ")},
			{"Description", p.Description},
		})
		if err != nil || len(p.Scenarios) == 0 {
			return err
		}
		io.WriteString(w, "\n")
		return writeTable(w, scenarioHeader, scenarioRows(p.Scenarios))
	})
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Projects, func(a *app.App, view *app.View) error {
			if err := a.LoadProjects(view.Context(), models.ProjectQuery{Limit: projectLimit}); err != nil {
				return err
			}
			list := a.Projects.Filter(projectSearch, models.ProjectStatus(projectStatus))
			return render(cmd, list, func(w io.Writer) error {
				return writeTable(w, projectHeader, projectRows(list))
			})
		})
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project and its scenarios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Build(routes.Project, args[0]), func(a *app.App, view *app.View) error {
			p, err := a.OpenProject(view.Context(), view.Match.Param("id"))
			if err != nil {
				return err
			}
			return renderProject(cmd, p)
		})
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := projectInput
		in.Name = args[0]
		return withView(cmd, routes.Projects, func(a *app.App, view *app.View) error {
			p, err := a.CreateProject(view.Context(), in)
			if err != nil {
				return err
			}
			return renderProject(cmd, p)
		})
	},
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a project's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := projectInput
		if cmd.Flags().Changed("name") {
			in.Name, _ = cmd.Flags().GetString("name")
		}
		return withView(cmd, routes.Build(routes.Project, args[0]), func(a *app.App, view *app.View) error {
			p, err := a.UpdateProject(view.Context(), view.Match.Param("id"), in)
			if err != nil {
				return err
			}
			return renderProject(cmd, p)
		})
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Projects, func(a *app.App, view *app.View) error {
			if err := a.DeleteProject(view.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), okStyle.Render("Deleted project "+args[0]))
			return nil
		})
	},
}

func projectFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&projectInput.Description, "description", "", "Project description")
	f.StringVar(&projectInput.Classification, "classification", "", "Classification marking")
	f.StringVar(&projectInput.RegionFocus, "region", "", "Region of interest")
	f.StringSliceVar(&projectInput.Tags, "tag", nil, "Tag, repeatable")
}

func init() {
	f := projectsListCmd.Flags()
	f.StringVar(&projectSearch, "search", "", "Match project name")
	f.StringVar(&projectStatus, "status", "", "Only projects in this status")
	f.IntVar(&projectLimit, "limit", 100, "Projects to fetch")

	projectFlags(projectsCreateCmd)
	projectFlags(projectsUpdateCmd)
	projectsUpdateCmd.Flags().String("name", "", "New project name")

	projectsCmd.AddCommand(projectsListCmd, projectsShowCmd, projectsCreateCmd, projectsUpdateCmd, projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}
