package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/clients"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace active projects with the remote copy",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	n, err := env.mgr.Sync(cmd.Context())
	if errors.Is(err, clients.ErrNoRemote) {
		fmt.Println("  Modo local: configura remote.url o HARMONY_REMOTE_URL para sincronizar.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Sincronizado: %d obras activas", n)))
	return nil
}
