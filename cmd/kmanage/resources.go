package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/internal/lifecycle"
	"github.com/sttts/kmanage/internal/reconcile"
	"github.com/sttts/kmanage/internal/store"
	"github.com/sttts/kmanage/pkg/manifest"
	"github.com/sttts/kmanage/pkg/workload"
)

// resourceArgs parses "<kind> <name>".
func resourceArgs(args []string) (workload.Kind, string, error) {
	kind, err := workload.ParseKind(args[0])
	if err != nil {
		return "", "", err
	}
	name := strings.TrimSpace(args[1])
	if name == "" {
		return "", "", fmt.Errorf("name must not be empty")
	}
	return kind, name, nil
}

// readDocument reads a manifest from path, or from stdin for "-".
func readDocument(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(data), nil
}

// withController prepares a one-shot command and runs fn against a
// controller whose outcomes are printed to the command output.
func withController(cmd *cobra.Command, fn func(c *lifecycle.Controller, namespace string) error) error {
	e, closeLog, err := prepare(false)
	if err != nil {
		return err
	}
	defer closeLog()
	namespace, err := e.requireNamespace()
	if err != nil {
		return err
	}
	c := e.controller(store.New(), printNotifier{out: cmd.OutOrStdout()})
	defer c.Close()
	return fn(c, namespace)
}

func newNamespacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "namespaces",
		Aliases: []string{"ns"},
		Short:   "List namespaces",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeLog, err := prepare(false)
			if err != nil {
				return err
			}
			defer closeLog()

			namespaces, err := e.backend.Namespaces(cmd.Context())
			if err != nil {
				return err
			}
			if namer, ok := e.backend.(backend.ClusterNamer); ok {
				// the gateway answers 503 without cluster information
				if name, err := namer.ClusterName(cmd.Context()); err == nil && name != "" {
					dimColor.Fprintf(cmd.OutOrStdout(), "cluster: %s\n", name)
				}
			}
			for _, ns := range namespaces {
				if ns == e.namespace {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ns, dimColor.Sprint("(current)"))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), ns)
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "get [pods|deployments]",
		Short: "List pods and deployments with their status",
		Long: `List pods and deployments of the namespace with their status. Without an
argument both kinds are listed.

Examples:
  kmanage get pods -n demo
  kmanage get -n demo --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := workload.Kinds
			if len(args) == 1 {
				kind, err := workload.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []workload.Kind{kind}
			}

			e, closeLog, err := prepare(false)
			if err != nil {
				return err
			}
			defer closeLog()
			namespace, err := e.requireNamespace()
			if err != nil {
				return err
			}

			st := store.New()
			loop := reconcile.New(e.backend, st,
				reconcile.WithKinds(kinds...),
				reconcile.WithInterval(e.cfg.Reconcile.Interval.Duration),
				reconcile.WithLogger(e.log.WithName("reconcile")),
			)
			defer loop.Stop()

			if !watch {
				if err := loop.Sync(cmd.Context(), namespace); err != nil {
					return err
				}
				return printSummaries(cmd.OutOrStdout(), st, namespace, kinds)
			}

			changed := make(chan struct{}, 1)
			cancel := st.Subscribe(func(store.Event) {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
			defer cancel()

			loop.SetNamespace(cmd.Context(), namespace)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-changed:
					dimColor.Fprintf(cmd.OutOrStdout(), "--- %s\n", namespace)
					if err := printSummaries(cmd.OutOrStdout(), st, namespace, kinds); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep refreshing and print the lists when they change")
	return cmd
}

func printSummaries(out io.Writer, st *store.Store, namespace string, kinds []workload.Kind) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tSTATUS")
	for _, kind := range kinds {
		for _, s := range st.List(store.Key{Namespace: namespace, Kind: kind}) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", kind, s.Name, statusString(s.Status))
		}
	}
	return w.Flush()
}

func newTemplateCmd() *cobra.Command {
	var image string

	cmd := &cobra.Command{
		Use:   "template <kind> <name>",
		Short: "Print the manifest template for a new pod or deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := resourceArgs(args)
			if err != nil {
				return err
			}
			if image == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				image = cfg.Manifest.DefaultImage
			}
			doc, err := manifest.Generate(kind, name, image)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), doc)
			return err
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "Container image, overrides manifest.defaultImage")
	return cmd
}

func newCreateCmd() *cobra.Command {
	var (
		file  string
		image string
	)

	cmd := &cobra.Command{
		Use:   "create <kind> <name>",
		Short: "Create a pod or deployment",
		Long: `Create a pod or deployment. Without -f the manifest template is submitted.

Examples:
  kmanage create pod web -n demo --image nginx:1.27
  kmanage create deployment api -n demo -f api.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := resourceArgs(args)
			if err != nil {
				return err
			}
			var doc string
			if file != "" {
				if doc, err = readDocument(cmd, file); err != nil {
					return err
				}
			}

			return withController(cmd, func(c *lifecycle.Controller, namespace string) error {
				s, err := c.OpenCreate(kind, namespace)
				if err != nil {
					return err
				}
				s.SetName(name)
				if image != "" {
					s.SetImage(image)
				}
				if file != "" {
					s.SetDocument(doc)
				}
				return c.Submit(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest to submit, - for stdin")
	cmd.Flags().StringVar(&image, "image", "", "Container image for the template")
	return cmd
}

func newApplyCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "apply <kind> <name> -f <file>",
		Short: "Replace an existing pod or deployment with a manifest",
		Long: `Replace an existing pod or deployment with a manifest. Pods are deleted and
recreated, deployments are updated in place.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := resourceArgs(args)
			if err != nil {
				return err
			}
			if file == "" {
				return fmt.Errorf("a manifest is required, use -f <file>")
			}
			doc, err := readDocument(cmd, file)
			if err != nil {
				return err
			}

			return withController(cmd, func(c *lifecycle.Controller, namespace string) error {
				s, err := c.FetchManifest(cmd.Context(), kind, namespace, name)
				if err != nil {
					return err
				}
				s.SetDocument(doc)
				return c.Submit(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest to submit, - for stdin")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <name>",
		Short: "Delete a pod or deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := resourceArgs(args)
			if err != nil {
				return err
			}
			return withController(cmd, func(c *lifecycle.Controller, namespace string) error {
				return c.Delete(cmd.Context(), kind, namespace, name)
			})
		},
	}
}

func newLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs <pod>",
		Short: "Print the logs of a pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, func(c *lifecycle.Controller, namespace string) error {
				logs, err := c.FetchLogs(cmd.Context(), namespace, args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), logs)
				return err
			})
		},
	}
}

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <kind> <name>",
		Short: "Print the manifest of a pod or deployment",
		Long: `Print the manifest of a pod or deployment, ready to be edited and passed to
"apply". When the backend has no usable manifest the template is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := resourceArgs(args)
			if err != nil {
				return err
			}
			return withController(cmd, func(c *lifecycle.Controller, namespace string) error {
				s, err := c.FetchManifest(cmd.Context(), kind, namespace, name)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), s.Document())
				return err
			})
		},
	}
}

func newDraftCmd() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "draft <kind> <name> <description...>",
		Short: "Let the assistant draft a manifest",
		Long: `Ask the assistant for a manifest matching a free-form description and print
it. With --create the draft is submitted right away.

Examples:
  kmanage draft deployment api "three replicas of httpbin on port 80" -n demo`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := resourceArgs(args[:2])
			if err != nil {
				return err
			}
			query := strings.Join(args[2:], " ")

			return withController(cmd, func(c *lifecycle.Controller, namespace string) error {
				s, err := c.OpenCreate(kind, namespace)
				if err != nil {
					return err
				}
				s.SetName(name)
				if err := c.Draft(cmd.Context(), query); err != nil {
					return err
				}
				if !create {
					_, err := io.WriteString(cmd.OutOrStdout(), s.Document())
					return err
				}
				return c.Submit(cmd.Context())
			})
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Submit the draft")
	return cmd
}
