package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cmprss/internal/codec"
	"cmprss/internal/job"
	"cmprss/internal/progress"
)

// commonFlags are shared by magic mode and every format subcommand, so they
// are registered once as persistent flags on the root command.
type commonFlags struct {
	input  string
	output string

	compress   bool
	extract    bool
	decompress bool

	level     string
	progress  string
	chunkSize string

	ignorePipes  bool
	ignoreStdin  bool
	ignoreStdout bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	p := cmd.PersistentFlags()

	p.StringVarP(&f.input, "input", "i", "", "input file or directory")
	p.StringVarP(&f.output, "output", "o", "", "output file or directory")
	p.BoolVarP(&f.compress, "compress", "c", false, "compress the input (default)")
	p.BoolVarP(&f.extract, "extract", "e", false, "extract the input")
	p.BoolVarP(&f.decompress, "decompress", "d", false, "decompress the input, alias of --extract")
	p.StringVar(&f.level, "level", "", "compression level: a number in the format's range, or none/fast/best")
	p.StringVar(&f.progress, "progress", "auto", "progress display: auto, on or off")
	p.StringVar(&f.chunkSize, "chunk-size", "8kib", "chunk size used during the copy, e.g. 65536, 64kb or 8mib")
	p.BoolVar(&f.ignorePipes, "ignore-pipes", false, "ignore pipes when inferring I/O")
	p.BoolVar(&f.ignoreStdin, "ignore-stdin", false, "ignore stdin when inferring I/O")
	p.BoolVar(&f.ignoreStdout, "ignore-stdout", false, "ignore stdout when inferring I/O")
}

// codecOptions parses the display and sizing flags once, up front, so bad
// values fail before any I/O resolution happens.
func (f *commonFlags) codecOptions() (codec.Options, error) {
	mode, err := progress.ParseMode(f.progress)
	if err != nil {
		return codec.Options{}, err
	}

	chunk, err := progress.ParseChunkSize(f.chunkSize)
	if err != nil {
		return codec.Options{}, err
	}

	return codec.Options{
		Level:     f.level,
		Progress:  mode,
		ChunkSize: chunk,
	}, nil
}

func (f *commonFlags) request(comp codec.Compressor, args []string, opts codec.Options) job.Request {
	return job.Request{
		Codec:        comp,
		Input:        f.input,
		Output:       f.output,
		IOList:       args,
		Compress:     f.compress,
		Extract:      f.extract,
		Decompress:   f.decompress,
		IgnorePipes:  f.ignorePipes,
		IgnoreStdin:  f.ignoreStdin,
		IgnoreStdout: f.ignoreStdout,
		StdinIsPipe:  !term.IsTerminal(int(os.Stdin.Fd())),
		StdoutIsPipe: !term.IsTerminal(int(os.Stdout.Fd())),
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Options:      opts,
	}
}
