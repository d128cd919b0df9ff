package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mcdev12/retrospekt/go/clients/retro_api_client"
	"github.com/mcdev12/retrospekt/go/internal/render"
)

var statsAdmin bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server-wide usage statistics",
	Long: `Stats prints aggregate numbers across all sessions. With --admin it also
prints the admin analytics, using admin_token when set and otherwise
asking for the admin password.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStats(cmd.Context(), cmd.OutOrStdout(), services, statsAdmin, promptPassword)
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsAdmin, "admin", false, "Include admin analytics")
}

func printStats(ctx context.Context, out io.Writer, svc *Services, admin bool, password func() (string, error)) error {
	r := render.New(out)

	public, err := svc.API.GetPublicStats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, r.PublicStats(public))

	if !admin {
		return nil
	}

	token := svc.Config.AdminToken
	if token == "" {
		pw, err := password()
		if err != nil {
			return err
		}
		if token, err = svc.API.AdminAuth(ctx, pw); err != nil {
			if isUnauthorized(err) {
				return fmt.Errorf("admin password rejected")
			}
			return err
		}
	}

	stats, err := svc.API.GetAdminStats(ctx, token)
	if err != nil {
		if isUnauthorized(err) {
			return fmt.Errorf("admin token rejected; it may have expired")
		}
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, r.AdminStats(stats))
	return nil
}

func promptPassword() (string, error) {
	if !isInteractive() {
		return "", fmt.Errorf("set admin_token or RETRO_ADMIN_TOKEN to use --admin non-interactively")
	}
	fmt.Fprint(os.Stderr, "Admin password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func isUnauthorized(err error) bool {
	var apiErr *retro_api_client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
