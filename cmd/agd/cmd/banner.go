package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const banner = `
     _    ____ ____  
    / \  / ___|  _ \ 
   / _ \| |  _| | | |
  / ___ \ |_| | |_| |
 /_/   \_\____|____/ 
`

func printBanner(w io.Writer) {
	fmt.Fprint(w, titleStyle.Render(banner))
	fmt.Fprintln(w)
	fmt.Fprintln(w, okStyle.Render("  Apex Global Defense - Version "+Version))
	fmt.Fprintln(w)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := map[string]string{"version": Version, "api_url": cfg.APIURL}
		return render(cmd, info, func(w io.Writer) error {
			printBanner(w)
			return writeFields(w, "", [][2]string{{"API", cfg.APIURL}})
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
