//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"

	"github.com/fekomat/fekomat/config"
	"github.com/fekomat/fekomat/export"
	"github.com/fekomat/fekomat/feko"
	"github.com/fekomat/fekomat/logging"
	"github.com/fekomat/fekomat/utils"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	typ        string
	varName    string
	compress   bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:   "fekomat <input> <output>",
		Short: "Convert FEKO impedance matrix files",
		Long: `fekomat decodes a FEKO binary impedance matrix (.mat) file and writes
the complex matrix as a MATLAB v5 file, a NumPy .npy array, a complex CSV
table or a GLB magnitude surface.

Example:
  fekomat zmat.mat zmat_out.mat --type mat
  fekomat zmat.mat zmat.npy -t npy`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, opts, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return utils.RunConvert(args[0], args[1], kind, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "TOML or YAML config file")
	pf.StringVarP(&f.typ, "type", "t", "mat", "output type: mat, npy, csv or glb")
	pf.StringVar(&f.varName, "var", "Zmat", "variable name for mat output")
	pf.BoolVar(&f.compress, "compress", false, "zlib-compress the mat variable")
	pf.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(&cobra.Command{
		Use:   "inspect <input>",
		Short: "Print the header and fingerprint of a matrix file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := f.load(cmd); err != nil {
				return err
			}
			return utils.RunInspect(args[0], cmd.OutOrStdout())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "batch <output-dir> <input> [input ...]",
		Short: "Convert several matrix files in parallel",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, opts, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return utils.RunConvertAll(args[1:], args[0], kind, opts)
		},
	})

	return root
}

// load merges the config file, if any, with explicitly set flags.
func (f *rootFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("type") {
		cfg.Type = f.typ
	}
	if flags.Changed("var") {
		cfg.VarName = f.varName
	}
	if flags.Changed("compress") {
		cfg.Compress = f.compress
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return cfg, nil
}

// resolve validates the output type before anything touches the input file.
func (f *rootFlags) resolve(cmd *cobra.Command) (export.Kind, utils.ConvertOptions, error) {
	cfg, err := f.load(cmd)
	if err != nil {
		return 0, utils.ConvertOptions{}, err
	}
	kind, err := export.ParseKind(cfg.Type)
	if err != nil {
		return 0, utils.ConvertOptions{}, err
	}

	logger := logging.Init("fekomat", cfg.LogLevel)
	return kind, utils.ConvertOptions{
		Export: export.Options{VarName: cfg.VarName, Compress: cfg.Compress},
		Logger: runLogger(logger),
		Limits: feko.Limits{MaxElements: cfg.MaxElements},
		Out:    cmd.OutOrStdout(),
	}, nil
}

func runLogger(l zerolog.Logger) zerolog.Logger {
	return l.With().Str("run", ksuid.New().String()).Logger()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("Operation completed!")
}
