// Package driver sequences the whole compiler pipeline: it shells out to
// gcc for preprocessing and for assembling/linking, and drives the
// lex/parse/tacky/codegen/emit stages for everything in between, stopping
// early when asked to.
package driver

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/hmny-labs/tinycc/pkg/asm"
	"github.com/hmny-labs/tinycc/pkg/cast"
	"github.com/hmny-labs/tinycc/pkg/emit"
	"github.com/hmny-labs/tinycc/pkg/lexer"
	"github.com/hmny-labs/tinycc/pkg/tacky"
	"github.com/hmny-labs/tinycc/pkg/token"
)

// Stage is the point in the pipeline at which the Driver should stop. From
// StageLex on, its values are ordered: a later Stage implies running every
// earlier one first. StageEmitReferenceAssembly is a side branch: it only
// asks gcc for reference assembly and runs none of the other stages.
type Stage int

const (
	StageEmitReferenceAssembly Stage = iota // -Sref: ask gcc for reference assembly and stop
	StageLex                                // --lex
	StageParse                              // --parse
	StageTacky                              // --tacky
	StageCodegen                            // --codegen
	StageEmitAssembly                       // -S
	StageAll                                // run the whole pipeline, the default
)

func (s Stage) String() string {
	switch s {
	case StageEmitReferenceAssembly:
		return "emit-reference-assembly"
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageTacky:
		return "tacky"
	case StageCodegen:
		return "codegen"
	case StageEmitAssembly:
		return "emit-assembly"
	case StageAll:
		return "all"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// stageFlags maps each recognized command-line switch to the Stage it
// selects. Declared here, not as teris-io/cli options, since "-Sref" and
// "-S" don't fit the short-flag/long-flag convention teris-io/cli (and
// most getopt-style libraries) assume.
var stageFlags = map[string]Stage{
	"-Sref":     StageEmitReferenceAssembly,
	"--lex":     StageLex,
	"--parse":   StageParse,
	"--tacky":   StageTacky,
	"--codegen": StageCodegen,
	"-S":        StageEmitAssembly,
}

// ParseStageFlag scans args in order for a recognized stage-limit switch.
// When more than one is present the last one wins, matching the spec's
// "latest flag wins" rule; when none is present it returns StageAll. The
// returned slice is args with every recognized stage flag removed, so the
// caller can still hand the remainder to a conventional argv parser for
// the positional filename and --help.
func ParseStageFlag(args []string) (Stage, []string) {
	stage := StageAll
	remaining := make([]string, 0, len(args))

	for _, a := range args {
		if s, ok := stageFlags[a]; ok {
			stage = s
			continue
		}
		remaining = append(remaining, a)
	}

	return stage, remaining
}

// Driver owns the end-to-end compilation of a single source file.
type Driver struct {
	Filename string
	Stage    Stage
	Logger   *log.Logger
}

// New builds a Driver for filename, stopping at stage.
func New(filename string, stage Stage, logger *log.Logger) *Driver {
	return &Driver{Filename: filename, Stage: stage, Logger: logger}
}

// Run executes every stage up to and including d.Stage, returning the
// first error encountered, wrapped with the name of the stage that
// produced it.
func (d *Driver) Run() error {
	if err := d.checkConfig(); err != nil {
		return err
	}

	if d.Stage == StageEmitReferenceAssembly {
		if err := d.emitReferenceAssembly(); err != nil {
			return fmt.Errorf("emit reference assembly: %w", err)
		}
		return nil
	}

	src, err := d.preprocess()
	if err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}

	if err := d.lex(src); err != nil {
		return fmt.Errorf("lex: %w", err)
	}
	if d.Stage == StageLex {
		return nil
	}

	program, err := d.parse(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if d.Stage == StageParse {
		return nil
	}

	tackyProgram, err := d.lowerTacky(program)
	if err != nil {
		return fmt.Errorf("tacky: %w", err)
	}
	if d.Stage == StageTacky {
		return nil
	}

	asmProgram, err := d.codegen(tackyProgram)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	if d.Stage == StageCodegen {
		return nil
	}

	if err := d.emitAssembly(asmProgram); err != nil {
		return fmt.Errorf("emit assembly: %w", err)
	}
	if d.Stage == StageEmitAssembly {
		return nil
	}

	if err := d.assembleAndLink(); err != nil {
		return fmt.Errorf("assemble and link: %w", err)
	}
	return nil
}

func (d *Driver) checkConfig() error {
	d.Logger.Printf("[driver] stage=%s filename=%s", d.Stage, d.Filename)

	if d.Filename == "" {
		return errors.New("driver: no input file given")
	}
	if !strings.HasSuffix(d.Filename, ".c") {
		return fmt.Errorf("driver: filename %q should end with \".c\"", d.Filename)
	}
	return nil
}

func (d *Driver) filenamePreprocessed() string {
	return strings.TrimSuffix(d.Filename, ".c") + ".i"
}

func (d *Driver) filenameAssembly() string {
	return strings.TrimSuffix(d.Filename, ".c") + ".s"
}

func (d *Driver) filenameOutput() string {
	return strings.TrimSuffix(d.Filename, ".c")
}

// preprocess asks gcc to run just the C preprocessor, reads the result
// into memory and removes the intermediate file.
func (d *Driver) preprocess() (string, error) {
	d.Logger.Printf("[preprocess] running gcc -E -P")

	if err := runGCC(d.Logger, "-E", "-P", d.Filename, "-o", d.filenamePreprocessed()); err != nil {
		return "", err
	}

	data, err := os.ReadFile(d.filenamePreprocessed())
	if err != nil {
		return "", fmt.Errorf("failed to read preprocessed file: %w", err)
	}
	if err := os.Remove(d.filenamePreprocessed()); err != nil {
		return "", fmt.Errorf("failed to remove %q: %w", d.filenamePreprocessed(), err)
	}

	return string(data), nil
}

// emitReferenceAssembly asks gcc itself to compile the source, for
// comparison against this compiler's own output; it never touches the
// rest of the pipeline.
func (d *Driver) emitReferenceAssembly() error {
	d.Logger.Printf("[emit-reference-assembly] running gcc -S -O")
	return runGCC(d.Logger, "-S", "-O", "-fno-asynchronous-unwind-tables", "-fcf-protection=none", d.Filename, "-o", d.filenameAssembly())
}

// lex tokenizes src purely for its diagnostic and stage-stopping value:
// it logs every token and surfaces the first lexical error, but the
// tokens themselves are discarded here. Parsing re-derives its own token
// stream from src.
func (d *Driver) lex(src string) error {
	lx, err := lexer.New(src)
	if err != nil {
		return err
	}

	for {
		tok := lx.NextToken()
		if tok.Type == token.ERROR {
			return errors.New(tok.Literal)
		}
		d.Logger.Printf("[lex] %s", tok.GoString())
		if tok.Type == token.EOF {
			return nil
		}
	}
}

func (d *Driver) parse(src string) (*cast.Program, error) {
	lx, err := lexer.New(src)
	if err != nil {
		return nil, err
	}

	program, err := cast.NewParser(lx).Parse()
	if err != nil {
		return nil, err
	}

	d.Logger.Printf("[parse] %#v", program)
	return program, nil
}

func (d *Driver) lowerTacky(program *cast.Program) (*tacky.Program, error) {
	tackyProgram, err := tacky.NewLowerer(program).Lower()
	if err != nil {
		return nil, err
	}

	d.Logger.Printf("[tacky] %#v", tackyProgram)
	return tackyProgram, nil
}

func (d *Driver) codegen(tackyProgram *tacky.Program) (*asm.Program, error) {
	asmProgram, err := asm.NewGenerator(tackyProgram).Generate()
	if err != nil {
		return nil, err
	}

	d.Logger.Printf("[codegen] %#v", asmProgram)
	return asmProgram, nil
}

func (d *Driver) emitAssembly(asmProgram *asm.Program) error {
	code := emit.Program(asmProgram)
	d.Logger.Printf("[emit] assembly:\n%s", code)

	f, err := os.Create(d.filenameAssembly())
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", d.filenameAssembly(), err)
	}
	defer f.Close()

	if _, err := f.WriteString(code); err != nil {
		return fmt.Errorf("failed to write assembly to %q: %w", d.filenameAssembly(), err)
	}
	return nil
}

func (d *Driver) assembleAndLink() error {
	d.Logger.Printf("[assemble-and-link] running gcc")
	if err := runGCC(d.Logger, d.filenameAssembly(), "-o", d.filenameOutput()); err != nil {
		return err
	}
	return os.Remove(d.filenameAssembly())
}

// runGCC shells out to gcc, forwarding its stdout/stderr, and turns a
// non-zero exit status into an error carrying the exit code.
func runGCC(logger *log.Logger, args ...string) error {
	logger.Printf("[gcc] gcc %s", strings.Join(args, " "))

	cmd := exec.Command("gcc", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("gcc exited with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run gcc: %w", err)
	}
	return nil
}
