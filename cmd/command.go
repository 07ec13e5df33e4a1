package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ldap-groups",
	Short: "Resolve LDAP group memberships",
	Long: `ldap-groups resolves the group memberships of directory users.

The user's entry is fetched first, then groups are found by matching the
user's username attribute against the member attribute of entries under the
group search base. The defaults follow the rfc2307 schema (uid, cn and
memberUid); Active Directory deployments typically override them.`,
	PersistentPreRun: setupLogging,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configDir string

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config_dir", ".", "Directory for configuration files")
	rootCmd.PersistentFlags().String("log_level", "info", "Log level (trace, debug, info, warn, error)")

	f := rootCmd.PersistentFlags()

	// Connection flags
	f.StringSlice("ldap_url", nil, "LDAP server URLs (ldap://host:389 or ldaps://host:636)")
	f.String("domain", "", "Domain for DNS SRV server discovery (used when no URLs are given)")
	f.Duration("timeout", 30*time.Second, "Directory operation timeout")
	f.Bool("start_tls", true, "Upgrade plain ldap:// connections with StartTLS")
	f.Bool("skip_tls", false, "Skip TLS entirely (not recommended)")
	f.Int("pool_size", 10, "Connection pool size")

	// Authentication flags
	f.String("bind_dn", "", "Bind DN, or Kerberos principal when a realm is configured")
	f.String("bind_pass", "", "Bind password")
	f.String("kerberos_realm", "", "Kerberos realm for GSSAPI authentication")
	f.String("kerberos_keytab", "", "Path to Kerberos keytab file")
	f.String("kerberos_ccache", "", "Path to Kerberos credential cache")
	f.String("kerberos_config", "", "Path to krb5.conf")
	f.String("kerberos_spn", "", "Explicit LDAP service principal override")

	// Group lookup flags
	f.String("group_base_dn", "", "Base DN for the group search (ou=groups,dc=example,dc=org)")
	f.String("user_base_dn", "", "Base DN for user entry lookups")
	f.String("username_attr", "uid", "Attribute holding the username in the user's entry")
	f.String("group_name_attr", "cn", "Attribute holding the group name in each group entry")
	f.String("member_attr", "memberUid", "Attribute associating member usernames with a group")

	viper.BindPFlags(f)
}

// setupLogging configures the global zerolog logger for console output.
func setupLogging(cmd *cobra.Command, args []string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	levelName, _ := cmd.Flags().GetString("log_level")
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// loadConfiguration merges an optional config file into viper. Explicit CLI
// flags still win through the FlagLoader.
func loadConfiguration(configFileName string) bool {
	viper.SetConfigName(configFileName)
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.ldap-groups")
	viper.AddConfigPath("/etc/ldap-groups/")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msgf("Config file not found: %s", configFileName)
			return false
		}
		log.Warn().Err(err).Msgf("Failed to load config file: %s", configFileName)
		return false
	}

	log.Info().Msgf("Loaded config file: %s", viper.ConfigFileUsed())
	return true
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
