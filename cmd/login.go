package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
)

var (
	flagLoginUser string
	flagLoginPIN  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a username and PIN",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and role",
	RunE:  runWhoami,
}

var biometricCmd = &cobra.Command{
	Use:       "biometric [on|off]",
	Short:     "Show or toggle the simulated fingerprint check at login",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runBiometric,
}

func init() {
	loginCmd.Flags().StringVarP(&flagLoginUser, "user", "u", "", "Username")
	loginCmd.Flags().StringVar(&flagLoginPIN, "pin", "", "PIN (prompted when omitted)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, biometricCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	user, pin := flagLoginUser, flagLoginPIN
	if user == "" || pin == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Usuario").Value(&user),
			huh.NewInput().Title("PIN").EchoMode(huh.EchoModePassword).Value(&pin),
		))
		if err := form.RunWithContext(ctx); err != nil {
			return err
		}
	}

	if on, _ := env.sessions.BiometricEnabled(ctx); on {
		fmt.Println(cli.RenderMuted("  Escaneando huella..."))
	}
	s, err := env.sessions.Login(ctx, user, pin)
	if err != nil {
		log.Info().Str("username", strings.TrimSpace(user)).Msg("login rejected")
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Bienvenido, %s (%s)", s.Username, s.Role)))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.sessions.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("Sesión cerrada"))
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	s, err := env.session(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Print(cli.RenderField("Usuario", s.Username))
	fmt.Print(cli.RenderField("Rol", string(s.Role)))
	return nil
}

func runBiometric(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if len(args) == 0 {
		on, err := env.sessions.BiometricEnabled(ctx)
		if err != nil {
			return err
		}
		state := "desactivada"
		if on {
			state = "activada"
		}
		fmt.Print(cli.RenderField("Huella", state))
		return nil
	}

	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
	default:
		return errors.New("usa `on` u `off`")
	}
	if err := env.sessions.SetBiometric(ctx, on); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("Preferencia de huella guardada"))
	return nil
}
