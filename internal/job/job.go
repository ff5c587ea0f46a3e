// Package job turns ambiguous CLI input — flags, a positional list mixing
// inputs with an optional output, and the piped-ness of stdin/stdout — into
// a fully resolved, immutable Job: which codec, which action, which concrete
// input(s) and output. Every fallback is an explicit rule; resolution is a
// single deterministic pass with no retries.
package job

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cmprss/internal/codec"
)

// Action is what the job does with its input.
type Action int

const (
	// ActionUnknown is only valid while resolving; a finished Job never
	// carries it.
	ActionUnknown Action = iota
	ActionCompress
	ActionExtract
)

func (a Action) String() string {
	switch a {
	case ActionCompress:
		return "compress"
	case ActionExtract:
		return "extract"
	}
	return "unknown"
}

var (
	ErrInputMissing = errors.New("specified input path does not exist")
	ErrOutputExists = errors.New("specified output path already exists")
	ErrNoInput      = errors.New("no specified input")

	ErrMustSpecifyCompressor = errors.New("must specify a compressor")
	ErrGuessCompressor       = errors.New("can't guess compressor to use")
	ErrMultiInputGuess       = errors.New("can't guess compressor with multiple inputs")

	ErrNoCompressor = errors.New("could not determine compressor to use")
	ErrNoAction     = errors.New("could not determine action to take")
)

// Request is everything resolution needs, gathered by the CLI layer. The
// piped-ness of stdin/stdout is injected rather than probed here so the
// resolution rules stay testable.
type Request struct {
	// Codec is the pre-known compressor from an explicit format subcommand;
	// nil in magic mode.
	Codec codec.Compressor

	// Input and Output are the --input/--output flag values; empty when unset.
	Input  string
	Output string

	// IOList is the positional list: inputs followed by the single output.
	IOList []string

	Compress   bool
	Extract    bool
	Decompress bool

	IgnorePipes  bool
	IgnoreStdin  bool
	IgnoreStdout bool

	StdinIsPipe  bool
	StdoutIsPipe bool

	Stdin  io.Reader
	Stdout io.Writer

	// Options configures any codec constructed during inference.
	Options codec.Options
}

// Job is a single fully determined compress-or-extract operation. It is
// created once per invocation and consumed exactly once.
type Job struct {
	Codec  codec.Compressor
	Input  codec.Input
	Output codec.Output
	Action Action
}

// Run dispatches the job to its codec.
func (j *Job) Run() error {
	switch j.Action {
	case ActionCompress:
		return j.Codec.Compress(j.Input, j.Output)
	case ActionExtract:
		return j.Codec.Extract(j.Input, j.Output)
	}
	return ErrNoAction
}

// Resolve determines the details of the requested job, or fails with a
// named error when something remains undetermined.
func Resolve(req Request) (*Job, error) {
	comp := req.Codec

	action := ActionUnknown
	if req.Compress {
		action = ActionCompress
	} else if req.Extract || req.Decompress {
		action = ActionExtract
	}

	var inputs []string
	if req.Input != "" {
		if !pathExists(req.Input) {
			return nil, ErrInputMissing
		}
		inputs = append(inputs, req.Input)
	}

	var (
		output    string
		outputSet bool
	)
	if req.Output != "" {
		if st, err := os.Stat(req.Output); err == nil && !st.IsDir() {
			return nil, ErrOutputExists
		}
		output, outputSet = req.Output, true
	}

	// The last positional token may be the output: adopt it when it does
	// not exist yet, or when it is a directory and we already know we are
	// extracting. An existing regular file stays an input candidate; there
	// is no implicit append. A directory under Compress or Unknown is
	// ambiguous and stays an input.
	ioList := append([]string(nil), req.IOList...)
	if !outputSet && len(ioList) > 0 {
		last := ioList[len(ioList)-1]
		st, err := os.Stat(last)
		switch {
		case err != nil:
			output, outputSet = last, true
			ioList = ioList[:len(ioList)-1]
		case st.IsDir() && action == ActionExtract:
			output, outputSet = last, true
			ioList = ioList[:len(ioList)-1]
		}
	}

	// Everything left in the positional list must be an existing input.
	for _, p := range ioList {
		if !pathExists(p) {
			return nil, ErrInputMissing
		}
		inputs = append(inputs, p)
	}

	// Fall back to stdin/stdout when files are missing.
	var in codec.Input
	if len(inputs) == 0 {
		if !req.StdinIsPipe || req.IgnorePipes || req.IgnoreStdin {
			return nil, ErrNoInput
		}
		in = codec.PipeInput(req.Stdin)
	} else {
		in = codec.PathInput(inputs...)
	}

	var out codec.Output
	switch {
	case outputSet:
		out = codec.PathOutput(output)
	case req.StdoutIsPipe && !req.IgnorePipes && !req.IgnoreStdout:
		out = codec.PipeOutput(req.Stdout)
	default:
		var err error
		out, comp, action, err = defaultOutput(req, in, comp, action)
		if err != nil {
			return nil, err
		}
	}

	if comp == nil || action == ActionUnknown {
		var err error
		comp, action, err = infer(req, in, out, comp, action)
		if err != nil {
			return nil, err
		}
	}

	if comp == nil {
		return nil, ErrNoCompressor
	}
	if action == ActionUnknown {
		return nil, ErrNoAction
	}

	return &Job{Codec: comp, Input: in, Output: out, Action: action}, nil
}

// defaultOutput synthesizes the default output filename when neither an
// output path nor a stdout pipe is available. Doing so may require settling
// the codec and action first.
func defaultOutput(req Request, in codec.Input, comp codec.Compressor, action Action) (codec.Output, codec.Compressor, Action, error) {
	name := inputFilename(in)

	switch action {
	case ActionCompress:
		if comp == nil {
			return codec.Output{}, nil, action, ErrMustSpecifyCompressor
		}
		return codec.PathOutput(codec.DefaultCompressedName(comp, name)), comp, action, nil

	case ActionExtract:
		if comp == nil {
			c, err := codec.FromFilename(name, req.Options)
			if err != nil {
				return codec.Output{}, nil, action, err
			}
			if c == nil {
				return codec.Output{}, nil, action, ErrMustSpecifyCompressor
			}
			comp = c
		}
		return codec.PathOutput(codec.DefaultExtractedName(comp, name)), comp, action, nil
	}

	// Action unknown: an archive-looking input means extraction; a known
	// codec whose extension the input does not carry means compression.
	fromInput, err := codec.FromFilename(name, req.Options)
	if err != nil {
		return codec.Output{}, nil, action, err
	}

	if comp == nil {
		if fromInput == nil {
			return codec.Output{}, nil, action, ErrMustSpecifyCompressor
		}
		return codec.PathOutput(codec.DefaultExtractedName(fromInput, name)), fromInput, ActionExtract, nil
	}
	if fromInput != nil && fromInput.Name() == comp.Name() {
		return codec.PathOutput(codec.DefaultExtractedName(comp, name)), comp, ActionExtract, nil
	}
	return codec.PathOutput(codec.DefaultCompressedName(comp, name)), comp, ActionCompress, nil
}

// infer settles whatever is still unknown after I/O resolution.
func infer(req Request, in codec.Input, out codec.Output, comp codec.Compressor, action Action) (codec.Compressor, Action, error) {
	opts := req.Options

	switch action {
	case ActionCompress:
		// The output name tells us the codec.
		if comp == nil && !out.IsPipe() {
			c, err := codec.FromFilename(out.Path, opts)
			if err != nil {
				return nil, action, err
			}
			comp = c
		}
		return comp, action, nil

	case ActionExtract:
		// The input name tells us the codec.
		if comp == nil && !in.IsPipe() {
			if len(in.Paths) != 1 {
				return nil, action, ErrMultiInputGuess
			}
			c, err := codec.FromFilename(in.Paths[0], opts)
			if err != nil {
				return nil, action, err
			}
			comp = c
		}
		return comp, action, nil
	}

	// Neither flag was given; decide from the shape of the I/O.
	switch {
	case in.IsPipe() && !out.IsPipe():
		fromOut, err := codec.FromFilename(out.Path, opts)
		if err != nil {
			return nil, action, err
		}
		if comp == nil {
			if fromOut == nil {
				return nil, action, ErrGuessCompressor
			}
			return fromOut, ActionCompress, nil
		}
		if fromOut != nil && fromOut.Name() == comp.Name() {
			return comp, ActionCompress, nil
		}
		return comp, ActionExtract, nil

	case !in.IsPipe() && out.IsPipe():
		if comp == nil {
			if len(in.Paths) != 1 {
				return nil, action, ErrMultiInputGuess
			}
			c, err := codec.FromFilename(in.Paths[0], opts)
			if err != nil {
				return nil, action, err
			}
			if c == nil {
				return nil, action, ErrGuessCompressor
			}
			return c, ActionExtract, nil
		}
		fromIn, err := codec.FromFilename(in.Paths[0], opts)
		if err != nil {
			return nil, action, err
		}
		if fromIn != nil && fromIn.Name() == comp.Name() {
			return comp, ActionExtract, nil
		}
		return comp, ActionCompress, nil

	case in.IsPipe() && out.IsPipe():
		// Compressing accepts arbitrary bytes; decoding arbitrary bytes
		// usually fails immediately and loudly, so compress is the safe
		// default.
		return comp, ActionCompress, nil
	}

	return guessFromFilenames(in.Paths, out.Path, comp, opts)
}

// guessFromFilenames decides codec and action when both sides are concrete
// paths, by comparing what each filename's extension suggests.
func guessFromFilenames(paths []string, outPath string, comp codec.Compressor, opts codec.Options) (codec.Compressor, Action, error) {
	fromOut, err := codec.FromFilename(outPath, opts)
	if err != nil {
		return nil, ActionUnknown, err
	}

	if len(paths) != 1 {
		if fromOut != nil {
			return fromOut, ActionCompress, nil
		}
		// Could be extracting multiple archives into a directory; a later
		// stage fails if that's not the case.
		return comp, ActionExtract, nil
	}
	inPath := paths[0]

	fromIn, err := codec.FromFilename(inPath, opts)
	if err != nil {
		return nil, ActionUnknown, err
	}

	if comp != nil {
		switch {
		case fromOut != nil && fromOut.Name() == comp.Name():
			return comp, ActionCompress, nil
		case fromIn != nil && fromIn.Name() == comp.Name():
			return comp, ActionExtract, nil
		default:
			return comp, ActionCompress, nil
		}
	}

	switch {
	case fromOut == nil && fromIn == nil:
		return nil, ActionUnknown, nil
	case fromOut != nil && fromIn == nil:
		return fromOut, ActionCompress, nil
	case fromOut == nil && fromIn != nil:
		return fromIn, ActionExtract, nil
	}

	if fromOut.Name() == fromIn.Name() {
		// Genuinely ambiguous: "file.gz file.gz.gz" could go either way,
		// since compressing an archive again is representable. Default to
		// compressing.
		return fromOut, ActionCompress, nil
	}

	// Different codecs on each side: whichever name is the other plus one
	// extra extension wins.
	inName := filepath.Base(inPath)
	outName := filepath.Base(outPath)
	inExt := strings.TrimPrefix(filepath.Ext(inName), ".")
	outExt := strings.TrimPrefix(filepath.Ext(outName), ".")

	if inName+"."+outExt == outName {
		return fromOut, ActionCompress, nil
	}
	if outName+"."+inExt == inName {
		return fromIn, ActionExtract, nil
	}

	return nil, ActionUnknown, nil
}

// inputFilename is the filename used to derive defaults: the first input
// path, or "archive" for pipe input.
func inputFilename(in codec.Input) string {
	if in.IsPipe() {
		return "archive"
	}
	return in.Paths[0]
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
