package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
)

var (
	scenarioProject string
	scenarioLimit   int
	scenarioType    string
	scenarioDesc    string
	branchName      string
)

var scenarioHeader = []string{"ID", "NAME", "TYPE", "STATUS", "VERSION", "PARENT"}

func scenarioRows(list []models.Scenario) [][]string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.ID, s.Name, string(s.ScenarioType), string(s.Status),
			strconv.Itoa(s.Version), orDash(s.ParentScenarioID),
		})
	}
	return rows
}

func renderScenario(cmd *cobra.Command, s *models.Scenario) error {
	return render(cmd, s, func(w io.Writer) error {
		err := writeFields(w, s.Name, [][2]string{
			{"ID", s.ID},
			{"Project", s.ProjectID},
			{"Type", string(s.ScenarioType)},
			{"Status", string(s.Status)},
			{"Version", strconv.Itoa(s.Version)},
			{"Branched from", s.ParentScenarioID},
			{"Description", s.Description},
		})
		if err != nil || len(s.Participants) == 0 {
			return err
		}
		rows := make([][]string, 0, len(s.Participants))
		for _, p := range s.Participants {
			rows = append(rows, []string{p.CountryName, p.Role})
		}
		io.WriteString(w, "\n")
		return writeTable(w, []string{"PARTICIPANT", "ROLE"}, rows)
	})
}

var scenariosCmd = &cobra.Command{
	Use:     "scenarios",
	Aliases: []string{"scenario"},
	Short:   "Manage the scenarios of a project",
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Scenarios, func(a *app.App, view *app.View) error {
			if err := a.LoadScenarios(view.Context(), scenarioProject, models.PageQuery{Limit: scenarioLimit}); err != nil {
				return err
			}
			list := a.Scenarios.Items()
			return render(cmd, list, func(w io.Writer) error {
				return writeTable(w, scenarioHeader, scenarioRows(list))
			})
		})
	},
}

var scenariosShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Scenarios, func(a *app.App, view *app.View) error {
			s, err := a.OpenScenario(view.Context(), scenarioProject, args[0])
			if err != nil {
				return err
			}
			return renderScenario(cmd, s)
		})
	},
}

var scenariosCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := models.ScenarioCreate{
			Name:         args[0],
			Description:  scenarioDesc,
			ScenarioType: models.ScenarioType(scenarioType),
		}
		return withView(cmd, routes.Scenarios, func(a *app.App, view *app.View) error {
			s, err := a.CreateScenario(view.Context(), scenarioProject, in)
			if err != nil {
				return err
			}
			return renderScenario(cmd, s)
		})
	},
}

var scenariosUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a scenario's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in models.ScenarioCreate
		if cmd.Flags().Changed("name") {
			in.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("description") {
			in.Description = scenarioDesc
		}
		if cmd.Flags().Changed("type") {
			in.ScenarioType = models.ScenarioType(scenarioType)
		}
		return withView(cmd, routes.Scenarios, func(a *app.App, view *app.View) error {
			s, err := a.UpdateScenario(view.Context(), scenarioProject, args[0], in)
			if err != nil {
				return err
			}
			return renderScenario(cmd, s)
		})
	},
}

var scenariosDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Scenarios, func(a *app.App, view *app.View) error {
			if err := a.DeleteScenario(view.Context(), scenarioProject, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), okStyle.Render("Deleted scenario "+args[0]))
			return nil
		})
	},
}

var scenariosBranchCmd = &cobra.Command{
	Use:   "branch <id>",
	Short: "Copy a scenario as a new version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Scenarios, func(a *app.App, view *app.View) error {
			s, err := a.BranchScenario(view.Context(), scenarioProject, args[0], branchName)
			if err != nil {
				return err
			}
			return renderScenario(cmd, s)
		})
	},
}

func init() {
	scenariosCmd.PersistentFlags().StringVarP(&scenarioProject, "project", "p", "", "Project ID")
	_ = scenariosCmd.MarkPersistentFlagRequired("project")

	scenariosListCmd.Flags().IntVar(&scenarioLimit, "limit", 100, "Scenarios to fetch")
	for _, c := range []*cobra.Command{scenariosCreateCmd, scenariosUpdateCmd} {
		c.Flags().StringVar(&scenarioType, "type", string(models.ScenarioConventional), "Scenario type")
		c.Flags().StringVar(&scenarioDesc, "description", "", "Scenario description")
	}
	scenariosUpdateCmd.Flags().String("name", "", "New scenario name")
	scenariosBranchCmd.Flags().StringVar(&branchName, "name", "", "Name of the copy")
	_ = scenariosBranchCmd.MarkFlagRequired("name")

	scenariosCmd.AddCommand(scenariosListCmd, scenariosShowCmd, scenariosCreateCmd,
		scenariosUpdateCmd, scenariosDeleteCmd, scenariosBranchCmd)
	rootCmd.AddCommand(scenariosCmd)
}
