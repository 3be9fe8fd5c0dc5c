package cmd

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
	"github.com/apexdefense/agd/store"
)

var (
	countrySearch  string
	countryRegion  string
	countrySort    string
	countryLimit   int
	countryRegions bool
)

var countriesCmd = &cobra.Command{
	Use:     "countries",
	Aliases: []string{"country"},
	Short:   "Browse country force data",
}

var countriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List countries, filtered and sorted locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		sortBy, err := store.ParseSortKey(countrySort)
		if err != nil {
			return err
		}
		return withView(cmd, routes.Countries, func(a *app.App, view *app.View) error {
			if err := a.LoadCountries(view.Context(), models.CountryQuery{Limit: countryLimit}); err != nil {
				return err
			}
			if countryRegions {
				regions := a.Countries.Regions()
				return render(cmd, regions, func(w io.Writer) error {
					rows := make([][]string, len(regions))
					for i, r := range regions {
						rows[i] = []string{r}
					}
					return writeTable(w, []string{"REGION"}, rows)
				})
			}
			list := a.Countries.Filter(countrySearch, countryRegion, sortBy)
			return render(cmd, list, func(w io.Writer) error {
				rows := make([][]string, 0, len(list))
				for _, c := range list {
					rows = append(rows, []string{c.ID, c.ISOCode, c.Name, orDash(c.Region), formatInt(c.Population), formatUSD(c.DefenseBudgetUSD)})
				}
				return writeTable(w, []string{"ID", "ISO", "NAME", "REGION", "POPULATION", "DEFENSE BUDGET"}, rows)
			})
		})
	},
}

type countryDetail struct {
	Country *models.Country      `json:"country" yaml:"country"`
	Summary *models.ForceSummary `json:"summary" yaml:"summary"`
}

var countriesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a country with its force summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Build(routes.Country, args[0]), func(a *app.App, view *app.View) error {
			c, sum, err := a.SelectCountry(view.Context(), view.Match.Param("id"))
			if err != nil {
				return err
			}
			return render(cmd, countryDetail{Country: c, Summary: sum}, func(w io.Writer) error {
				fields := [][2]string{
					{"ISO", c.ISOCode + " / " + c.ISOCode2},
					{"Region", strings.TrimSuffix(c.Region+" / "+c.Subregion, " / ")},
					{"Capital", c.Capital},
					{"Population", formatInt(c.Population)},
					{"GDP", formatUSD(c.GDPUSD)},
					{"Defense budget", formatUSD(c.DefenseBudgetUSD)},
				}
				if sum != nil {
					fields = append(fields,
						[2]string{"Personnel", groupThousands(itoa(sum.TotalPersonnel))},
						[2]string{"  active", groupThousands(itoa(sum.ActivePersonnel))},
						[2]string{"  reserve", groupThousands(itoa(sum.ReservePersonnel))},
						[2]string{"  paramilitary", groupThousands(itoa(sum.ParamilitaryPersonnel))},
						[2]string{"Tanks", groupThousands(itoa(sum.TotalTanks))},
						[2]string{"Aircraft", groupThousands(itoa(sum.TotalAircraft))},
						[2]string{"Naval vessels", groupThousands(itoa(sum.TotalNavalVessels))},
					)
				}
				if err := writeFields(w, c.Name, fields); err != nil {
					return err
				}
				if len(c.MilitaryBranches) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(c.MilitaryBranches))
				for _, b := range c.MilitaryBranches {
					rows = append(rows, []string{b.Name, string(b.BranchType), formatInt(b.PersonnelActive), formatUSD(b.BudgetUSD)})
				}
				io.WriteString(w, "\n")
				return writeTable(w, []string{"BRANCH", "TYPE", "ACTIVE", "BUDGET"}, rows)
			})
		})
	},
}

func init() {
	f := countriesListCmd.Flags()
	f.StringVar(&countrySearch, "search", "", "Match name or ISO code")
	f.StringVar(&countryRegion, "region", "", "Only countries in this region")
	f.StringVar(&countrySort, "sort", "budget", "Sort by name, budget or population")
	f.IntVar(&countryLimit, "limit", 200, "Countries to fetch")
	f.BoolVar(&countryRegions, "regions", false, "List the regions present instead")

	countriesCmd.AddCommand(countriesListCmd, countriesShowCmd)
	rootCmd.AddCommand(countriesCmd)
}
