package commands

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/opd-ai/securecomm"
	"github.com/opd-ai/securecomm/auth"
	"github.com/opd-ai/securecomm/transport"
)

// clientCmd connects to a server, establishes a session, and runs the
// interactive chat until the quit word is entered or the peer disconnects.
func clientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "client",
		Short: "Connect to a securecomm server and chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			trustStore, err := provider()
			if err != nil {
				return err
			}

			conn, err := net.Dial("tcp", rt.Config.Addr())
			if err != nil {
				return fmt.Errorf("connect to %s: %w", rt.Config.Addr(), err)
			}
			defer conn.Close()

			creds := auth.Credentials{Username: username, Password: password}
			sess, err := securecomm.Establish(rt, conn, trustStore, creds, securecomm.RoleInitiator)
			if err != nil {
				return err
			}

			fmt.Printf("Connected to %s. Type %q to quit.\n", rt.Config.Addr(), rt.Config.QuitWord)

			source := transport.NewScannerSource(os.Stdin, rt.Config.QuitWord)
			sink := transport.NewConsoleSink(os.Stdout, "Server")
			return securecomm.RunChannel(rt, conn, sess, source, sink)
		},
	}
}
