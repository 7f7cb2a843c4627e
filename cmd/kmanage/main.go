package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	globals  globalOptions
	dimColor = color.New(color.Faint)
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	apiURL     string
	direct     bool
	kubeconfig string
	context    string
	namespace  string
	logFile    string
	debug      bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kmanage",
		Short: "Manage pods and deployments of a namespace",
		Long: `kmanage lists, creates, edits and deletes pods and deployments in one
namespace. Without a subcommand it starts the terminal UI.

By default it talks to a kmanage gateway (see "kmanage serve"). With --direct
it talks to the cluster of the current kubeconfig context instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.configPath, "config", "", "Path to the config file (default ~/.kmanage/config.yaml)")
	flags.StringVar(&globals.apiURL, "api-url", "", "Gateway URL including the /api prefix, overrides api.url")
	flags.BoolVar(&globals.direct, "direct", false, "Talk to the cluster directly instead of the gateway")
	flags.StringVar(&globals.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	flags.StringVar(&globals.context, "context", "", "Kubeconfig context to use")
	flags.StringVarP(&globals.namespace, "namespace", "n", "", "Namespace to work in")
	flags.StringVar(&globals.logFile, "log-file", "", "Write logs to this file")
	flags.BoolVar(&globals.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newTUICmd(),
		newServeCmd(),
		newContextsCmd(),
		newNamespacesCmd(),
		newGetCmd(),
		newTemplateCmd(),
		newCreateCmd(),
		newApplyCmd(),
		newDeleteCmd(),
		newLogsCmd(),
		newManifestCmd(),
		newDraftCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kmanage %s\n", version)
			dimColor.Fprintf(out, "commit: %s\ndate: %s\ngo: %s\n", commit, date, runtime.Version())
			return nil
		},
	}
}
