package commands

import (
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/securecomm"
	"github.com/opd-ai/securecomm/auth"
	"github.com/opd-ai/securecomm/transport"
)

// serverCmd listens for connections and runs one interactive chat per
// accepted client. Clients are served one at a time: the console is the
// message source and there is only one of it.
func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Listen for securecomm clients and chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			trustStore, err := provider()
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", rt.Config.Addr())
			if err != nil {
				return fmt.Errorf("listen on %s: %w", rt.Config.Addr(), err)
			}
			defer listener.Close()

			rt.Log.WithFields(logrus.Fields{
				"function": "server",
				"addr":     rt.Config.Addr(),
			}).Info("Listening for connections")

			creds := auth.Credentials{Username: username, Password: password}
			for {
				conn, err := listener.Accept()
				if err != nil {
					return fmt.Errorf("accept: %w", err)
				}

				if err := serveClient(trustStore, creds, conn); err != nil {
					rt.Log.WithFields(logrus.Fields{
						"function": "server",
						"remote":   conn.RemoteAddr().String(),
						"error":    err.Error(),
					}).Error("Client session failed")
				}
			}
		},
	}
}

func serveClient(trustStore auth.AuthenticationProvider, creds auth.Credentials, conn net.Conn) error {
	defer conn.Close()

	sess, err := securecomm.Establish(rt, conn, trustStore, creds, securecomm.RoleResponder)
	if err != nil {
		return err
	}

	fmt.Printf("Client connected from %s. Type %q to end the session.\n",
		conn.RemoteAddr(), rt.Config.QuitWord)

	source := transport.NewScannerSource(os.Stdin, rt.Config.QuitWord)
	sink := transport.NewConsoleSink(os.Stdout, "Client")
	return securecomm.RunChannel(rt, conn, sess, source, sink)
}
