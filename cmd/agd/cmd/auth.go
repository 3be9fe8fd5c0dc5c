package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
)

var (
	loginEmail    string
	loginPassword string
	passwordStdin bool

	registerName string
	registerOrg  string
	registerRole string

	whoamiRefresh bool
)

// readPassword resolves the password from the flag, stdin or AGD_PASSWORD,
// in that order.
func readPassword(cmd *cobra.Command) (string, error) {
	switch {
	case passwordStdin:
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	case loginPassword != "":
		return loginPassword, nil
	}
	if p := os.Getenv("AGD_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errors.New("no password given (use --password, --password-stdin or AGD_PASSWORD)")
}

func userFields(u *models.User) [][2]string {
	return [][2]string{
		{"Email", u.Email},
		{"Name", u.FullName},
		{"Organization", u.Organization},
		{"Role", string(u.Role)},
		{"ID", u.ID},
	}
}

func renderUser(cmd *cobra.Command, title string, u *models.User) error {
	return render(cmd, u, func(w io.Writer) error {
		return writeFields(w, title, userFields(u))
	})
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		return withView(cmd, routes.Login, func(a *app.App, view *app.View) error {
			u, err := a.Login(view.Context(), loginEmail, password)
			if err != nil {
				return err
			}
			return renderUser(cmd, "Logged in", u)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log into it",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		in := models.UserCreate{
			Email:        loginEmail,
			FullName:     registerName,
			Password:     password,
			Organization: registerOrg,
			Role:         models.UserRole(registerRole),
		}
		return withView(cmd, routes.Register, func(a *app.App, view *app.View) error {
			u, err := a.Register(view.Context(), in)
			if err != nil {
				return err
			}
			return renderUser(cmd, "Registered", u)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Root, func(a *app.App, view *app.View) error {
			if err := a.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), okStyle.Render("Logged out"))
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Dashboard, func(a *app.App, view *app.View) error {
			u := a.Session.User()
			if whoamiRefresh || u == nil {
				var err error
				if u, err = a.RefreshUser(view.Context()); err != nil {
					return err
				}
			}
			return renderUser(cmd, "", u)
		})
	},
}

type statusInfo struct {
	Authenticated bool         `json:"authenticated" yaml:"authenticated"`
	User          *models.User `json:"user,omitempty" yaml:"user,omitempty"`
	Location      string       `json:"location" yaml:"location"`
	APIURL        string       `json:"api_url" yaml:"api_url"`
	Profile       string       `json:"profile" yaml:"profile"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and where the client would land",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Root, func(a *app.App, view *app.View) error {
			info := statusInfo{
				Authenticated: a.Session.IsAuthenticated(),
				User:          a.Session.User(),
				Location:      view.Match.Path,
				APIURL:        a.Gateway.BaseURL(),
				Profile:       cfg.Profile,
			}
			return render(cmd, info, func(w io.Writer) error {
				state := errStyle.Render("logged out")
				if info.Authenticated {
					state = okStyle.Render("logged in")
				}
				fields := [][2]string{{"Session", state}}
				if info.User != nil {
					fields = append(fields, [2]string{"User", info.User.Email})
				}
				fields = append(fields,
					[2]string{"Location", info.Location},
					[2]string{"API", info.APIURL},
					[2]string{"Profile", info.Profile},
				)
				return writeFields(w, "", fields)
			})
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&loginEmail, "email", "", "Account email")
		c.Flags().StringVar(&loginPassword, "password", "", "Account password")
		c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
		_ = c.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerOrg, "organization", "", "Organization")
	registerCmd.Flags().StringVar(&registerRole, "role", "", "Requested role")
	_ = registerCmd.MarkFlagRequired("name")

	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Re-read the account from the backend")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, statusCmd)
}
