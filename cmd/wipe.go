package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
)

const wipePhrase = "ELIMINAR"

var flagWipeConfirm string

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all projects and history from this device (admin)",
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().StringVar(&flagWipeConfirm, "confirm", "", "Type "+wipePhrase+" to confirm")
	rootCmd.AddCommand(wipeCmd)
}

func runWipe(cmd *cobra.Command, _ []string) error {
	if flagWipeConfirm != wipePhrase {
		return errors.New("operación destructiva: repite con --confirm " + wipePhrase)
	}

	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	s, err := env.admin(ctx)
	if err != nil {
		return err
	}
	if err := env.mgr.Wipe(ctx); err != nil {
		return err
	}
	log.Warn().Str("user", s.Username).Msg("local data wiped")
	fmt.Println(cli.RenderOK("Datos locales eliminados"))
	return nil
}
