package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"uvbump/internal/app"
	"uvbump/internal/types"
)

type reportOptions struct {
	Root         string
	Kind         string
	Timeout      int
	Index        string
	IndexBackend string
	IndexUser    string
	IndexToken   string
	Workers      int
	Pre          bool
	InexactPins  string
	Format       string
}

func bindReportFlags(cmd *cobra.Command, opts *reportOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.Root, "root", ".", "Project root containing the manifest")
	flags.StringVar(&opts.Kind, "kind", string(types.ProjectKindUv), "Project kind (uv, npm)")
	flags.IntVar(&opts.Timeout, "timeout", int(app.DefaultTimeout/time.Second), "Timeout in seconds for each external command and index request")
	flags.StringVar(&opts.Index, "index", "", "Package index URL (defaults to the backend's public index)")
	flags.StringVar(&opts.IndexBackend, "index-backend", "", "Index backend (pypi-json, pip-simple, pip-command, npm-registry, npm-command)")
	flags.StringVar(&opts.IndexUser, "index-user", "", "Index username for basic auth")
	flags.StringVar(&opts.IndexToken, "index-token", "", "Index token or password for basic auth")
	flags.IntVar(&opts.Workers, "workers", app.DefaultWorkers, "Concurrent index queries")
	flags.BoolVar(&opts.Pre, "pre", false, "Consider pre-releases when picking the newest version")
	flags.StringVar(&opts.InexactPins, "inexact-pins", string(types.InexactPinPolicyExclude), "Handling of range constraints (exclude, bound)")
	flags.StringVar(&opts.Format, "format", string(types.OutputFormatText), "Output format (text, json, yaml)")

	_ = viper.BindPFlag("root", flags.Lookup("root"))
	_ = viper.BindPFlag("kind", flags.Lookup("kind"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("index", flags.Lookup("index"))
	_ = viper.BindPFlag("index_backend", flags.Lookup("index-backend"))
	_ = viper.BindPFlag("index_user", flags.Lookup("index-user"))
	_ = viper.BindPFlag("index_token", flags.Lookup("index-token"))
	_ = viper.BindPFlag("workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("pre", flags.Lookup("pre"))
	_ = viper.BindPFlag("inexact_pins", flags.Lookup("inexact-pins"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
}

func buildReportRequest(cmd *cobra.Command, opts reportOptions) app.ReportRequest {
	return app.ReportRequest{
		Root:         resolveString(cmd, opts.Root, "root", "root"),
		Kind:         types.ProjectKind(resolveString(cmd, opts.Kind, "kind", "kind")),
		Timeout:      time.Duration(resolveInt(cmd, opts.Timeout, "timeout", "timeout")) * time.Second,
		Index:        resolveString(cmd, opts.Index, "index", "index"),
		IndexBackend: types.IndexBackend(resolveString(cmd, opts.IndexBackend, "index_backend", "index-backend")),
		IndexUser:    resolveString(cmd, opts.IndexUser, "index_user", "index-user"),
		IndexToken:   resolveString(cmd, opts.IndexToken, "index_token", "index-token"),
		Workers:      resolveInt(cmd, opts.Workers, "workers", "workers"),
		Pre:          resolveBool(cmd, opts.Pre, "pre", "pre"),
		InexactPins:  types.InexactPinPolicy(resolveString(cmd, opts.InexactPins, "inexact_pins", "inexact-pins")),
		Format:       types.OutputFormat(resolveString(cmd, opts.Format, "format", "format")),
	}
}

func runReport(ctx context.Context, cmd *cobra.Command, opts reportOptions) error {
	service := app.NewService()
	_, err := service.Report(ctx, buildReportRequest(cmd, opts), cmd.OutOrStdout())
	return err
}
