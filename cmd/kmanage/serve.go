package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sttts/kmanage/internal/assistant"
	"github.com/sttts/kmanage/internal/backend/kube"
	"github.com/sttts/kmanage/internal/server"
	"github.com/sttts/kmanage/pkg/kubeconfig"
)

func newServeCmd() *cobra.Command {
	var (
		addr            string
		tailLines       int64
		recreateTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the /api gateway over the current kubeconfig context",
		Long: `Serve the /api gateway the terminal UI and the CLI talk to by default.
It uses the cluster of the kubeconfig context selected by --kubeconfig and
--context. Drafting requests are forwarded to the configured chat completion
endpoint with the API key read from server.assistant.apiKeyEnv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			closeLog, err := setupLogging(false)
			if err != nil {
				return err
			}
			defer closeLog()

			target, err := kubeconfig.Resolve(globals.kubeconfig, globals.context)
			if err != nil {
				return err
			}
			b, err := kube.NewForConfig(target.Config,
				kube.WithClusterName(target.Cluster),
				kube.WithTailLines(tailLines),
				kube.WithRecreateTimeout(recreateTimeout),
			)
			if err != nil {
				return err
			}

			opts := []server.Option{
				server.WithClusterInfo(b),
				server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
				server.WithUpdateTimeout(cfg.Server.UpdateTimeout.Duration),
			}
			if a := cfg.Server.Assistant; a.Endpoint != "" {
				key := os.Getenv(a.APIKeyEnv)
				if key == "" {
					dimColor.Fprintf(cmd.ErrOrStderr(), "%s is not set, drafting requests will be rejected upstream\n", a.APIKeyEnv)
				}
				opts = append(opts, server.WithCompleter(assistant.NewClient(a.Endpoint, a.Model, key)))
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			dimColor.Fprintf(cmd.ErrOrStderr(), "Using context %s (cluster %s)\n", target.Context, target.Cluster)
			return server.New(b, opts...).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	cmd.Flags().Int64Var(&tailLines, "tail-lines", 0, "Return only the last lines of pod logs, 0 for all")
	cmd.Flags().DurationVar(&recreateTimeout, "recreate-timeout", 30*time.Second, "How long a pod update waits for the old pod to go away")
	return cmd
}
