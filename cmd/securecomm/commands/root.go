// Package commands implements the securecomm command line interface.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/securecomm"
	"github.com/opd-ai/securecomm/auth"
	"github.com/opd-ai/securecomm/config"
)

var (
	configPath string
	username   string
	password   string

	rt *securecomm.RuntimeContext
)

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:   "securecomm",
		Short: "Authenticated encrypted chat over a TCP stream",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			var err error
			rt, err = securecomm.NewRuntimeContext(cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt != nil {
				_ = rt.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	root.PersistentFlags().StringVarP(&username, "user", "u", "user", "principal username")
	root.PersistentFlags().StringVarP(&password, "pass", "p", "pass", "principal password")

	root.AddCommand(clientCmd(), serverCmd())
	return root.Execute()
}

// provider resolves the trust store: the configured hashed store file when
// set, the reference store otherwise.
func provider() (auth.AuthenticationProvider, error) {
	if rt.Config.TrustStore != "" {
		p, err := auth.LoadHashedProvider(rt.Config.TrustStore)
		if err != nil {
			return nil, fmt.Errorf("trust store: %w", err)
		}
		return p, nil
	}
	return auth.NewReferenceProvider(), nil
}
