package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/tlsutil"
)

func newCertsCmd() *cobra.Command {
	var (
		outDir   string
		hosts    []string
		validFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Write a development CA plus server and client certificates for riskd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := tlsutil.WriteDevCerts(outDir, tlsutil.DevCertOptions{
				Hosts:    hosts,
				ValidFor: validFor,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "TLS_CERT_FILE=%s\n", files.ServerCert)
			fmt.Fprintf(out, "TLS_KEY_FILE=%s\n", files.ServerKey)
			fmt.Fprintf(out, "TLS_CLIENT_CA_FILE=%s\n", files.CACert)
			fmt.Fprintf(out, "# client: %s %s\n", files.ClientCert, files.ClientKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "certs", "directory to write PEM files into")
	cmd.Flags().StringArrayVar(&hosts, "host", []string{"localhost", "127.0.0.1"}, "subject alternative name (repeatable)")
	cmd.Flags().DurationVar(&validFor, "valid-for", 365*24*time.Hour, "certificate lifetime")
	return cmd
}
