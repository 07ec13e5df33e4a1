package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cyverse-de/ldap-groups/pkg/directory"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check directory connectivity and authentication",
	Run:   runCheck,
}

func runCheck(cmd *cobra.Command, args []string) {
	loadConfiguration("ldap-groups")
	f := NewFlagLoader(cmd)

	connCfg := loadConnectionConfig(f)

	client, err := directory.NewClient(connCfg, directory.WithLogger(log.Logger))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build directory client")
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), connCfg.Timeout)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("directory check failed")
	}

	fmt.Println("directory connection OK")
	fmt.Printf("  auth method: %s\n", connCfg.GetAuthMethod())
	stats := client.Stats()
	fmt.Printf("  connections created: %d\n", stats.Created)
}
