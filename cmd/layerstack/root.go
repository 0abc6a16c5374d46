package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brunoga/layerstack"
	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/internal/config"
	"github.com/brunoga/layerstack/internal/logging"
	"github.com/brunoga/layerstack/metrics"
	"github.com/brunoga/layerstack/preview"
	"github.com/brunoga/layerstack/project"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *logrus.Logger
}

// stackFlags are the inputs of every command that compiles a project.
type stackFlags struct {
	catalog string
	project string
	format  string
}

func (f *stackFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "directory of base documents")
	cmd.Flags().StringVar(&f.project, "project", "", "project file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&f.format, "format", "yaml", "output format: yaml or json")
	cmd.MarkFlagRequired("catalog")
	cmd.MarkFlagRequired("project")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "layerstack",
		Short: "Stack toggleable settings layers on a base document",
		Long: `layerstack builds a device settings document by applying an ordered list
of toggleable layers to a base document. It reports which layers were applied,
which were skipped and which layer won every conflicting field.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides the config)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (overrides the config)")

	root.AddCommand(
		newCompileCmd(a),
		newPreviewCmd(a),
		newConflictsCmd(a),
		newExportCmd(a),
		newDiffCmd(a),
		newShareCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// loadStack loads the catalog and the project named by f.
func (a *app) loadStack(f *stackFlags, m *metrics.Collector) (*layerstack.Stack, error) {
	catalog, err := document.LoadCatalogDir(f.catalog)
	if err != nil {
		return nil, err
	}
	p, err := project.LoadFile(f.project)
	if err != nil {
		return nil, err
	}
	if dropped := p.Normalize(); dropped > 0 {
		a.logger.WithField("dropped", dropped).Warn("dropped unknown or repeated ids from the layer order")
	}

	opts := []layerstack.Option{
		layerstack.WithLogger(a.logger),
		layerstack.WithMetrics(m),
		layerstack.WithHistorySize(a.cfg.History.MaxSize),
	}
	if a.cfg.Preview.Table != "" {
		table, err := loadTable(a.cfg.Preview.Table)
		if err != nil {
			return nil, err
		}
		opts = append(opts, layerstack.WithPreviewTable(table))
	}
	return layerstack.FromProject(catalog, p, opts...)
}

func loadTable(path string) (preview.StaticTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open preview table: %w", err)
	}
	defer f.Close()
	return preview.LoadTable(f)
}

// write encodes v to w as YAML or JSON.
func write(w io.Writer, format string, v any) error {
	switch format {
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
