// Command resize enlarges an uncompressed 24-bit BMP image by an integer factor.
//
// Usage:
//
//	resize [flags] <scaleFactor> <inputPath> <outputPath>
//
// Every pixel is repeated scaleFactor times horizontally and every scanline
// scaleFactor times vertically. The exit status tells what went wrong:
// 1 usage, 2 unreadable source, 3 unwritable destination, 4 unsupported
// format, 5 I/O failure while transcoding, 255 invalid scale factor.
package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/leeforge/bmpscale/config"
	"github.com/leeforge/bmpscale/errors"
	"github.com/leeforge/bmpscale/json"
	"github.com/leeforge/bmpscale/logging"
	"github.com/leeforge/bmpscale/media/processor"
	"github.com/leeforge/bmpscale/media/storage"
	"github.com/leeforge/bmpscale/utils"
)

const readBufferSize = 64 << 10

var errSameFile = stderrors.New("destination is the source file")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	atomic     bool
	report     bool
	verbose    bool
	preview    string
	configPath string
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: resize [flags] <scaleFactor> <inputPath> <outputPath>\n\nFlags:\n%s", fs.FlagUsages())
}

func newFlagSet(opts *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("resize", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.atomic, "atomic", false, "write to a temporary file and rename it on success")
	fs.BoolVar(&opts.report, "report", false, "print the output geometry as JSON on stdout")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	fs.StringVar(&opts.preview, "preview", "", "also write a PNG thumbnail of the result to `path`")
	fs.StringVar(&opts.configPath, "config", "", "directory holding bmpscale.yaml")
	fs.Usage = func() { printUsage(stderr, fs) }
	return fs
}

// run executes the command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)

	if err := fs.Parse(escapeNegativeNumbers(fs, args)); err != nil {
		if err == pflag.ErrHelp {
			return errors.ExitOK
		}
		return errors.ExitUsage
	}

	positional := fs.Args()
	if len(positional) != 3 {
		printUsage(stderr, fs)
		return errors.ExitUsage
	}
	factor, inPath, outPath := positional[0], positional[1], positional[2]

	cfgOpts := config.DefaultConfigOptions()
	if opts.configPath != "" {
		cfgOpts.BasePath = opts.configPath
	}
	cfg, err := config.Load(cfgOpts)
	if err != nil {
		fmt.Fprintf(stderr, "resize: config: %v\n", err)
		return errors.ExitUsage
	}

	logCfg := cfg.Log
	logCfg.Output = stderr
	if opts.verbose {
		logCfg.LogInTerminal = true
		logCfg.Level = "debug"
	}
	logger := logging.NewLogger(logCfg)
	logging.SetGlobal(logger)
	defer func() {
		_ = logger.Sync()
		_ = logging.CloseAllWriters()
	}()

	c := &command{
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
		stderr: stderr,
	}
	c.opts.atomic = opts.atomic || cfg.Output.Atomic
	c.opts.report = opts.report || cfg.Output.Report

	if err := c.resize(logging.ToContext(ctx, logger), factor, inPath, outPath); err != nil {
		return c.fail(err)
	}
	return errors.ExitOK
}

// escapeNegativeNumbers ends flag parsing before the first bare negative
// integer so "-3" reaches the scale factor check instead of the flag parser.
func escapeNegativeNumbers(fs *pflag.FlagSet, args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		if _, err := strconv.Atoi(arg); err != nil || takesValue(fs, args, i) {
			continue
		}
		escaped := make([]string, 0, len(args)+1)
		escaped = append(escaped, args[:i]...)
		escaped = append(escaped, "--")
		return append(escaped, args[i:]...)
	}
	return args
}

// takesValue reports whether args[i] is the separate value of the flag before it.
func takesValue(fs *pflag.FlagSet, args []string, i int) bool {
	if i == 0 {
		return false
	}
	prev := args[i-1]
	if !strings.HasPrefix(prev, "--") || strings.Contains(prev, "=") {
		return false
	}
	f := fs.Lookup(strings.TrimPrefix(prev, "--"))
	return f != nil && f.Value.Type() != "bool"
}

type command struct {
	opts   options
	cfg    *config.AppConfig
	logger logging.Logger
	stdout io.Writer
	stderr io.Writer
}

func (c *command) resize(ctx context.Context, factor, inPath, outPath string) error {
	resizer := processor.NewResizer(
		processor.WithMaxScaleFactor(c.cfg.MaxScaleFactor),
		processor.WithLogger(c.logger.Named("resizer")),
	)

	n, err := strconv.Atoi(factor)
	if err != nil {
		return errors.NewInvalidScaleFactor(factor, resizer.MaxScaleFactor())
	}
	if err := resizer.CheckScaleFactor(n); err != nil {
		return err
	}

	provider := storage.NewLocalProvider(c.opts.atomic)

	src, err := provider.Open(ctx, inPath)
	if err != nil {
		return errors.NewSourceUnreadable(inPath, err)
	}
	defer src.Close()

	// creating the destination would truncate the source before it is read
	if utils.SameFile(inPath, outPath) {
		return errors.NewDestinationUnwritable(outPath, errSameFile)
	}

	dst, err := provider.Create(ctx, outPath)
	if err != nil {
		return errors.NewDestinationUnwritable(outPath, err)
	}

	geo, err := resizer.Resize(ctx, n, bufio.NewReaderSize(src, readBufferSize), dst)
	if err != nil {
		c.release(dst, err)
		return err
	}
	if err := dst.Close(); err != nil {
		return errors.NewTranscodeIO("close", err).WithDetail("path", outPath)
	}

	c.logger.Info("bitmap written",
		zap.String("source", inPath),
		zap.String("destination", outPath),
		zap.Int("scale_factor", n),
		zap.Int("width", geo.OutputWidth),
		zap.Int("height", geo.OutputHeight),
		zap.Uint32("file_size", geo.FileSize),
	)

	if c.opts.preview != "" {
		if err := c.writePreview(ctx, provider, outPath); err != nil {
			return err
		}
	}

	if c.opts.report {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(&processor.Report{
			Source:      inPath,
			Destination: outPath,
			Atomic:      c.opts.atomic,
			Preview:     c.opts.preview,
			Geometry:    geo,
		})
	}
	return nil
}

// release disposes of a destination after a failed resize. Output is removed
// when nothing useful was written or when the write is atomic; otherwise the
// truncated file stays in place.
func (c *command) release(dst storage.Destination, cause error) {
	var err error
	switch errors.TypeOf(cause) {
	case errors.ErrorTypeTranscodeIO, errors.ErrorTypeDestinationUnwritable:
		if c.opts.atomic {
			err = dst.Discard()
		} else {
			err = dst.Close()
		}
	default:
		err = dst.Discard()
	}
	if err != nil {
		c.logger.Warn("could not release destination", zap.String("path", dst.Name()), zap.Error(err))
	}
}

func (c *command) writePreview(ctx context.Context, provider *storage.LocalProvider, outPath string) error {
	src, err := provider.Open(ctx, outPath)
	if err != nil {
		return errors.NewSourceUnreadable(outPath, err)
	}
	defer src.Close()

	dst, err := provider.Create(ctx, c.opts.preview)
	if err != nil {
		return errors.NewDestinationUnwritable(c.opts.preview, err)
	}

	bounds, err := processor.NewNativeProcessor(c.cfg.Preview.MaxSize).
		Preview(bufio.NewReaderSize(src, readBufferSize), dst)
	if err != nil {
		_ = dst.Discard()
		return err
	}
	if err := dst.Close(); err != nil {
		return errors.NewDestinationUnwritable(c.opts.preview, err)
	}

	c.logger.Debug("preview written",
		zap.String("path", c.opts.preview),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
	)
	return nil
}

var diagnostics = errors.NewErrorFormatter(true, false, true)

// fail prints a one-line diagnostic and returns the exit status for err.
func (c *command) fail(err error) int {
	appErr := errors.FromError(err)
	fmt.Fprintf(c.stderr, "resize: %s\n", diagnostics.Format(appErr))
	c.logger.Error("resize failed",
		zap.String("kind", utils.UpperCamelCase(string(appErr.Type))),
		zap.String("code", appErr.Code),
		zap.Error(err),
	)
	return appErr.ExitCode()
}
