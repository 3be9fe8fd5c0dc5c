package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/routes"
)

type tokenInfo struct {
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero" yaml:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
	Expired   bool      `json:"expired" yaml:"expired"`
}

// inspectToken reads the claims of a bearer token without verifying its
// signature. The backend remains the authority on validity.
func inspectToken(raw string, now time.Time) (tokenInfo, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return tokenInfo{}, fmt.Errorf("decoding token: %w", err)
	}
	info := tokenInfo{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		info.Expired = !now.Before(info.ExpiresAt)
	}
	return info, nil
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show the claims of the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.Dashboard, func(a *app.App, view *app.View) error {
			raw, err := a.Gateway.Token()
			if err != nil {
				return err
			}
			info, err := inspectToken(raw, time.Now())
			if err != nil {
				return err
			}
			return render(cmd, info, func(w io.Writer) error {
				fields := [][2]string{{"Subject", info.Subject}}
				if !info.IssuedAt.IsZero() {
					fields = append(fields, [2]string{"Issued", info.IssuedAt.Local().Format(time.RFC1123)})
				}
				if !info.ExpiresAt.IsZero() {
					exp := info.ExpiresAt.Local().Format(time.RFC1123)
					if info.Expired {
						exp = errStyle.Render(exp + " (expired)")
					} else {
						exp += fmt.Sprintf(" (in %s)", time.Until(info.ExpiresAt).Round(time.Second))
					}
					fields = append(fields, [2]string{"Expires", exp})
				}
				return writeFields(w, "", fields)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
