package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sttts/kmanage/pkg/kubeconfig"
)

func newContextsCmd() *cobra.Command {
	var kubeDir string

	cmd := &cobra.Command{
		Use:   "contexts",
		Short: "List the kubeconfig contexts found in ~/.kube",
		Long: `List the contexts of every kubeconfig file in ~/.kube. Pass one of them
with --context to "serve" or to a command run with --direct.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := kubeconfig.NewManager()
			var err error
			if kubeDir != "" {
				err = m.DiscoverIn(kubeDir)
			} else {
				err = m.DiscoverKubeconfigs()
			}
			if err != nil {
				return err
			}

			contexts := m.GetContexts()
			if len(contexts) == 0 {
				dimColor.Fprintln(cmd.OutOrStdout(), "No contexts found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CURRENT\tNAME\tCLUSTER\tNAMESPACE\tFILE")
			for _, c := range contexts {
				current := ""
				if c.Current {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, c.Name, c.Cluster, c.Namespace, c.Kubeconfig.Path)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kubeDir, "dir", "", "Directory to search instead of ~/.kube")
	return cmd
}
