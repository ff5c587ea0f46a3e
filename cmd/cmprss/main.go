package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cmprss/internal/codec"
	"cmprss/internal/job"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flags commonFlags

var rootCmd = &cobra.Command{
	Use:   "cmprss",
	Short: "cmprss - a compression multi-tool",
	Long: "cmprss compresses and extracts tar, gzip, xz, bzip2, zip, zstd and lz4.\n" +
		"Without a format subcommand it infers the format, action and I/O from\n" +
		"the given paths and any attached pipes.",
	Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	Args:    cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Magic mode: no explicit format, everything is inferred.
		return run(nil, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR(cmprss): %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags.register(rootCmd)
	rootCmd.AddCommand(
		formatCommand("tar", "tar archive format", nil,
			func(o codec.Options) (codec.Compressor, error) { return codec.NewTar(o), nil }),
		formatCommand("gzip", "gzip compression", []string{"gz"},
			func(o codec.Options) (codec.Compressor, error) { return codec.NewGzip(o) }),
		formatCommand("xz", "xz compression", nil,
			func(o codec.Options) (codec.Compressor, error) { return codec.NewXz(o) }),
		formatCommand("bzip2", "bzip2 compression", []string{"bz2"},
			func(o codec.Options) (codec.Compressor, error) { return codec.NewBzip2(o) }),
		formatCommand("zip", "zip archive format", nil,
			func(o codec.Options) (codec.Compressor, error) { return codec.NewZip(o), nil }),
		formatCommand("zstd", "zstd compression", []string{"zst"},
			func(o codec.Options) (codec.Compressor, error) { return codec.NewZstd(o) }),
		formatCommand("lz4", "lz4 compression", nil,
			func(o codec.Options) (codec.Compressor, error) { return codec.NewLz4(o), nil }),
	)
}

func formatCommand(use, short string, aliases []string, build buildFunc) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Aliases: aliases,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(build, args)
		},
	}
}

type buildFunc func(codec.Options) (codec.Compressor, error)

// run resolves and executes one job. build is nil in magic mode.
func run(build buildFunc, args []string) error {
	opts, err := flags.codecOptions()
	if err != nil {
		return err
	}

	var comp codec.Compressor
	if build != nil {
		comp, err = build(opts)
		if err != nil {
			return err
		}
	}

	j, err := job.Resolve(flags.request(comp, args, opts))
	if err != nil {
		return err
	}

	return j.Run()
}
