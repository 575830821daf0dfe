// Command patchrack is the engine's command-line entry point: zero
// arguments reads a patch from standard input until a blank line; one
// argument treats it as a patch file path. Flags are parsed with pflag;
// startup and shutdown are logged through charmbracelet/log's
// structured logger.
package main

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/halvorsen-audio/patchrack/pkg/engine"
	"github.com/halvorsen-audio/patchrack/pkg/graph"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
	"github.com/halvorsen-audio/patchrack/pkg/wavio"

	// Registers every concrete module type with pkg/registry via init().
	_ "github.com/halvorsen-audio/patchrack/pkg/modules"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	defaultSampleRate = 48000.0
	defaultBlockSize  = 480
)

// fileConfig mirrors the flag set for --config: a site can pin these
// values in a YAML file instead of a wrapper script. Flags override
// whatever the file sets.
type fileConfig struct {
	SampleRate float64 `yaml:"sample_rate"`
	BlockSize  int     `yaml:"block_size"`
	OSCPort    int     `yaml:"osc_port"`
	MIDIDevice string  `yaml:"midi_device"`
	OutDir     string  `yaml:"out_dir"`
}

func main() {
	os.Exit(run())
}

func run() int {
	sampleRate := pflag.Float64P("sample-rate", "r", defaultSampleRate, "engine sample rate in Hz")
	blockSize := pflag.IntP("block-size", "b", defaultBlockSize, "scheduler block size in frames")
	configPath := pflag.String("config", "", "optional YAML config file")
	oscPort := pflag.IntP("osc-port", "o", 9000, "base UDP port for the OSC control surface")
	midiDevice := pflag.StringP("midi-device", "m", "", "MIDI input port name substring (default: first available)")
	outDir := pflag.String("out-dir", "", "recordings output directory root")
	noUI := pflag.Bool("no-ui", false, "disable the terminal UI thread (headless mode)")
	listModules := pflag.Bool("list-modules", false, "print registered module type names and exit")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "patchrack",
	})

	if *listModules {
		for _, name := range registry.Global().TypeNames() {
			logger.Print(name)
		}
		return 0
	}

	cfg, err := loadFileConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config file", "err", err)
		return 1
	}
	applyFlagOverrides(cfg, sampleRate, blockSize, oscPort, midiDevice, outDir)

	if *blockSize < 1 || *blockSize > module.MaxBlockSize {
		logger.Error("block-size out of range", "block-size", *blockSize, "max", module.MaxBlockSize)
		return 1
	}
	wavio.SetDir(*outDir)

	g, err := loadPatch(pflag.Args(), *sampleRate, *blockSize, logger)
	if err != nil {
		logger.Error("failed to load patch", "err", err)
		return 1
	}

	if !engine.HasAudioProducer(g) {
		logger.Error("patch has no audio-producing module")
		return 1
	}

	eng := engine.New(g, engine.Options{
		OSCBasePort:  *oscPort,
		MIDIPortName: *midiDevice,
		Interactive:  !*noUI,
		Log:          logger,
	})
	if err := eng.Start(); err != nil {
		logger.Error("failed to start engine", "err", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	eng.Stop()
	return 0
}

// loadPatch implements the invocation rule: zero arguments reads the
// patch from standard input until a blank line; one argument treats it
// as a patch file path.
func loadPatch(args []string, sampleRate float64, blockSize int, logger *log.Logger) (*graph.Graph, error) {
	graph.SetDiagnosticsSink(logger)

	var r io.Reader
	switch len(args) {
	case 0:
		r = stdinUntilBlankLine()
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	default:
		return nil, errTooManyArgs
	}
	return graph.Parse(r, registry.Global(), sampleRate, blockSize)
}

// loadFileConfig reads --config when set, returning a zero-value
// fileConfig (every field its flag-default sentinel) when path is empty.
func loadFileConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides fills in file-config values for flags left at their
// pflag default, then lets any explicitly-set flag win: flags override
// file values.
func applyFlagOverrides(cfg *fileConfig, sampleRate *float64, blockSize, oscPort *int, midiDevice, outDir *string) {
	if !pflag.CommandLine.Changed("sample-rate") && cfg.SampleRate > 0 {
		*sampleRate = cfg.SampleRate
	}
	if !pflag.CommandLine.Changed("block-size") && cfg.BlockSize > 0 {
		*blockSize = cfg.BlockSize
	}
	if !pflag.CommandLine.Changed("osc-port") && cfg.OSCPort > 0 {
		*oscPort = cfg.OSCPort
	}
	if !pflag.CommandLine.Changed("midi-device") && cfg.MIDIDevice != "" {
		*midiDevice = cfg.MIDIDevice
	}
	if !pflag.CommandLine.Changed("out-dir") && cfg.OutDir != "" {
		*outDir = cfg.OutDir
	}
}

var errTooManyArgs = &argError{"usage: patchrack [patch-file]"}

type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

// stdinUntilBlankLine buffers stdin up to (not including) the first
// blank line, for the zero-argument invocation.
func stdinUntilBlankLine() io.Reader {
	var b strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.NewReader(b.String())
}
