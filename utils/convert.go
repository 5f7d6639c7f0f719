package utils

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fekomat/fekomat/api"
	"github.com/fekomat/fekomat/export"
	"github.com/fekomat/fekomat/feko"
	"github.com/rs/zerolog"
)

var ErrInputNotFound = errors.New("input file not found")

// ConvertOptions carries everything RunConvert needs besides paths.
type ConvertOptions struct {
	Export export.Options
	Logger zerolog.Logger
	Limits feko.Limits
	// Out receives progress lines; nil means os.Stdout.
	Out io.Writer
}

func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		Export: export.DefaultOptions(),
		Logger: zerolog.Nop(),
		Limits: feko.DefaultLimits(),
	}
}

func (o ConvertOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func checkInput(inPath string) error {
	st, err := os.Stat(inPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, inPath)
		}
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputNotFound, inPath)
	}
	return nil
}

// RunConvert reads an impedance matrix file and writes it to outPath as kind.
func RunConvert(inPath, outPath string, kind export.Kind, opts ConvertOptions) error {
	if err := checkInput(inPath); err != nil {
		return err
	}
	out := opts.out()
	fmt.Fprintf(out, "Processing input file: %s\n", inPath)

	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	start := time.Now()
	dec := feko.NewDecoder(feko.WithLogger(opts.Logger), feko.WithLimits(opts.Limits))
	encoded, res, err := api.ConvertWith(dec, data, kind, opts.Export)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	opts.Logger.Info().
		Str("input", inPath).
		Str("output", outPath).
		Stringer("type", kind).
		Int("rows", res.Matrix.Rows).
		Int("cols", res.Matrix.Cols).
		Stringer("precision", res.Matrix.Precision).
		Stringer("compression", res.Compression).
		Dur("took", time.Since(start)).
		Msg("conversion finished")

	fmt.Fprintf(out, "Written output file: %s\n", outPath)
	return nil
}

// RunConvertAll converts every input into outDir, naming each output after its
// input with kind's extension. Inputs are decoded in parallel; the first
// failure in input order is returned after all workers finish.
func RunConvertAll(inputs []string, outDir string, kind export.Kind, opts ConvertOptions) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	// a shared writer would interleave lines
	var mu sync.Mutex
	out := &lockedWriter{mu: &mu, w: opts.out()}

	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := opts
			o.Out = out
			o.Logger = opts.Logger.With().Str("input", inputs[i]).Logger()
			errs[i] = RunConvert(inputs[i], OutputPath(inputs[i], outDir, kind), kind, o)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("%s: %w", inputs[i], err)
		}
	}
	return nil
}

// OutputPath swaps inPath's extension for kind's inside outDir.
func OutputPath(inPath, outDir string, kind export.Kind) string {
	base := filepath.Base(inPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+kind.Extension())
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// RunInspect prints the header of inPath and the fingerprint of its matrix.
func RunInspect(inPath string, w io.Writer) error {
	if err := checkInput(inPath); err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}
	h, err := api.Inspect(data)
	if err != nil {
		return err
	}

	status := "supported"
	if h.CheckVersion() != nil {
		status = fmt.Sprintf("unsupported (expected %d)", feko.SupportedVersion)
	}
	fmt.Fprintf(w, "File:        %s\n", inPath)
	fmt.Fprintf(w, "Version:     %d %s\n", h.Version, status)
	fmt.Fprintf(w, "Checksum:    %s\n", hex.EncodeToString(h.Checksum[:]))
	fmt.Fprintf(w, "Precision:   %s\n", h.Precision)
	fmt.Fprintf(w, "Dimensions:  %d x %d\n", h.Rows, h.Cols)

	res, err := feko.DecodeBytes(data)
	if err != nil {
		return fmt.Errorf("decode impedance matrix: %w", err)
	}
	fmt.Fprintf(w, "Compression: %s\n", res.Compression)
	fmt.Fprintf(w, "Fingerprint: %016x\n", res.Matrix.Fingerprint())
	return nil
}
