package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/auth"
	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/config"
	"github.com/theirongolddev/harmony/internal/tui"
)

var flagSetupAddUser bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&flagSetupAddUser, "add-user", false, "Add a login to the config instead of running the wizard")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	// Flag overrides such as --offline are not persisted.
	onDisk, err := config.Load()
	if err != nil {
		return err
	}

	if flagSetupAddUser {
		if err := promptUser(cmd, &onDisk); err != nil {
			return err
		}
	} else {
		vals := tui.SetupValuesFrom(onDisk)
		if err := tui.NewSetupForm(&vals).RunWithContext(cmd.Context()); err != nil {
			return err
		}
		vals.Apply(&onDisk)
	}

	if err := config.Save(onDisk); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println()
	fmt.Println(cli.RenderOK("Guardado en " + config.Path()))
	fmt.Println("  Ejecuta `harmony setup` cuando quieras reconfigurar.")
	return nil
}

func promptUser(cmd *cobra.Command, c *config.Config) error {
	var name, pin string
	role := string(auth.RoleBasic)

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Usuario").Value(&name).Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("requerido")
			}
			return nil
		}),
		huh.NewInput().Title("PIN").EchoMode(huh.EchoModePassword).Value(&pin).Validate(func(s string) error {
			if len(strings.TrimSpace(s)) < 4 {
				return errors.New("mínimo 4 dígitos")
			}
			return nil
		}),
		huh.NewSelect[string]().Title("Rol").Options(
			huh.NewOption("Administrador", string(auth.RoleAdmin)),
			huh.NewOption("Solo lectura", string(auth.RoleBasic)),
		).Value(&role),
	))
	if err := form.RunWithContext(cmd.Context()); err != nil {
		return err
	}

	hash, err := auth.HashPIN(strings.TrimSpace(pin))
	if err != nil {
		return err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	u := config.UserConfig{Name: name, Role: role, PINHash: hash}
	for i := range c.Auth.Users {
		if c.Auth.Users[i].Name == name {
			c.Auth.Users[i] = u
			return nil
		}
	}
	c.Auth.Users = append(c.Auth.Users, u)
	return nil
}
