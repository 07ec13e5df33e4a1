package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cyverse-de/ldap-groups/pkg/directory"
	"github.com/cyverse-de/ldap-groups/pkg/groups"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().Bool("json", false, "Emit the result as JSON")
	resolveCmd.Flags().Bool("verbose", false, "Also print the user's DN and decoded objectGUID/objectSid")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <username>...",
	Short: "Resolve the group memberships of one or more users",
	Args:  cobra.MinimumNArgs(1),
	Run:   runResolve,
}

// resolveResult is the JSON shape emitted per user.
type resolveResult struct {
	Username string   `json:"username"`
	DN       string   `json:"dn,omitempty"`
	GUID     string   `json:"guid,omitempty"`
	SID      string   `json:"sid,omitempty"`
	Groups   []string `json:"groups"`
	Error    string   `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) {
	loadConfiguration("ldap-groups")
	f := NewFlagLoader(cmd)

	connCfg := loadConnectionConfig(f)
	groupCfg := loadGroupConfig(f)

	resolver, err := groups.New(connCfg, groupCfg, groups.WithLogger(log.Logger))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build resolver")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connCfg.Timeout)
	defer cancel()

	asJSON := f.Bool("json")
	verbose := f.Bool("verbose")
	failed := false

	for _, username := range args {
		result := resolveOne(ctx, resolver, username)
		if result.Error != "" {
			failed = true
		}
		printResult(result, asJSON, verbose)
	}

	if failed {
		os.Exit(1)
	}
}

func resolveOne(ctx context.Context, resolver *groups.Resolver, username string) resolveResult {
	result := resolveResult{Username: username, Groups: []string{}}

	entry, err := resolver.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, groups.ErrUserNotFound) {
			result.Error = "user not found"
		} else {
			result.Error = err.Error()
		}
		return result
	}

	result.DN = entry.DN
	result.GUID = directory.ExtractGUID(entry)
	result.SID = directory.ExtractSID(entry)

	memberships, err := resolver.Resolve(ctx, entry)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Groups = memberships
	return result
}

func printResult(result resolveResult, asJSON, verbose bool) {
	if asJSON {
		encoded, err := json.Marshal(result)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to encode result")
		}
		fmt.Println(string(encoded))
		return
	}

	if result.Error != "" {
		fmt.Fprintf(os.Stderr, "%s: %s\n", result.Username, result.Error)
		return
	}

	fmt.Printf("%s (%s)\n", result.Username, result.DN)
	if verbose {
		if result.GUID != "" {
			fmt.Printf("  guid: %s\n", result.GUID)
		}
		if result.SID != "" {
			fmt.Printf("  sid:  %s\n", result.SID)
		}
	}
	if len(result.Groups) == 0 {
		fmt.Println("  (no groups)")
		return
	}
	for _, group := range result.Groups {
		fmt.Printf("  %s\n", group)
	}
}

// loadConnectionConfig builds the directory connection settings from flags,
// environment and config file.
func loadConnectionConfig(f *FlagLoader) *directory.ConnectionConfig {
	connCfg := directory.DefaultConnectionConfig()

	connCfg.LDAPURLs = f.StringSlice("ldap_url")
	connCfg.Domain = f.String("domain")
	if timeout := f.Duration("timeout"); timeout > 0 {
		connCfg.Timeout = timeout
	}
	connCfg.UseTLS = f.Bool("start_tls")
	connCfg.SkipTLS = f.Bool("skip_tls")
	if poolSize := f.Int("pool_size"); poolSize > 0 {
		connCfg.MaxConnections = poolSize
	}

	connCfg.BindDN = f.String("bind_dn")
	connCfg.BindPassword = f.String("bind_pass")
	connCfg.KerberosRealm = f.String("kerberos_realm")
	connCfg.KerberosKeytab = f.String("kerberos_keytab")
	connCfg.KerberosCCache = f.String("kerberos_ccache")
	connCfg.KerberosConfig = f.String("kerberos_config")
	connCfg.KerberosSPN = f.String("kerberos_spn")

	return connCfg
}

// loadGroupConfig builds the group lookup settings from flags, environment
// and config file.
func loadGroupConfig(f *FlagLoader) groups.Config {
	return groups.Config{
		GroupBaseDN:        f.String("group_base_dn"),
		UserBaseDN:         f.String("user_base_dn"),
		UsernameAttribute:  f.String("username_attr"),
		GroupNameAttribute: f.String("group_name_attr"),
		MemberAttribute:    f.String("member_attr"),
	}
}
