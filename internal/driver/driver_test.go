package driver

import (
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestParseStageFlagDefaultsToAll(t *testing.T) {
	stage, remaining := ParseStageFlag([]string{"main.c"})
	if stage != StageAll {
		t.Errorf("got %s, want %s", stage, StageAll)
	}
	if len(remaining) != 1 || remaining[0] != "main.c" {
		t.Errorf("got remaining %v, want [main.c]", remaining)
	}
}

func TestParseStageFlagRecognizesEachFlag(t *testing.T) {
	cases := []struct {
		flag string
		want Stage
	}{
		{"-Sref", StageEmitReferenceAssembly},
		{"--lex", StageLex},
		{"--parse", StageParse},
		{"--tacky", StageTacky},
		{"--codegen", StageCodegen},
		{"-S", StageEmitAssembly},
	}

	for _, c := range cases {
		stage, remaining := ParseStageFlag([]string{c.flag, "main.c"})
		if stage != c.want {
			t.Errorf("flag %s: got stage %s, want %s", c.flag, stage, c.want)
		}
		if len(remaining) != 1 || remaining[0] != "main.c" {
			t.Errorf("flag %s: got remaining %v, want [main.c]", c.flag, remaining)
		}
	}
}

func TestParseStageFlagLatestWins(t *testing.T) {
	stage, _ := ParseStageFlag([]string{"--lex", "--codegen", "main.c"})
	if stage != StageCodegen {
		t.Errorf("got %s, want %s (the last flag given)", stage, StageCodegen)
	}

	stage, _ = ParseStageFlag([]string{"--codegen", "--lex", "main.c"})
	if stage != StageLex {
		t.Errorf("got %s, want %s (the last flag given)", stage, StageLex)
	}
}

func TestStageOrdering(t *testing.T) {
	if !(StageEmitReferenceAssembly < StageLex && StageLex < StageParse &&
		StageParse < StageTacky && StageTacky < StageCodegen &&
		StageCodegen < StageEmitAssembly && StageEmitAssembly < StageAll) {
		t.Fatal("Stage values are not in the expected total order")
	}
}

func TestFilenameDerivation(t *testing.T) {
	d := &Driver{Filename: "foo.c"}
	if got := d.filenamePreprocessed(); got != "foo.i" {
		t.Errorf("filenamePreprocessed() = %q, want foo.i", got)
	}
	if got := d.filenameAssembly(); got != "foo.s" {
		t.Errorf("filenameAssembly() = %q, want foo.s", got)
	}
	if got := d.filenameOutput(); got != "foo" {
		t.Errorf("filenameOutput() = %q, want foo", got)
	}
}

func TestCheckConfigRejectsMissingFilename(t *testing.T) {
	d := &Driver{Filename: "", Logger: discardLogger()}
	if err := d.checkConfig(); err == nil {
		t.Fatal("expected an error for an empty filename")
	}
}

func TestCheckConfigRejectsNonCSuffix(t *testing.T) {
	d := &Driver{Filename: "main.txt", Logger: discardLogger()}
	if err := d.checkConfig(); err == nil {
		t.Fatal("expected an error for a non-.c filename")
	}
}

func TestCheckConfigAcceptsCFile(t *testing.T) {
	d := &Driver{Filename: "main.c", Logger: discardLogger()}
	if err := d.checkConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestRunEndToEnd exercises the whole pipeline against a real gcc, the
// way the teacher's own cmd tests shell out to an external tool
// (CPUEmulator.sh) rather than faking it. It's skipped when gcc isn't on
// PATH.
func TestRunEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("gcc"); err != nil {
		t.Skip("gcc not found on PATH")
	}

	dir := t.TempDir()
	cPath := filepath.Join(dir, "main.c")
	if err := os.WriteFile(cPath, []byte("int main(void) { return -(~5); }\n"), 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	d := New(cPath, StageEmitAssembly, discardLogger())
	if err := d.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	sPath := strings.TrimSuffix(cPath, ".c") + ".s"
	assembly, err := os.ReadFile(sPath)
	if err != nil {
		t.Fatalf("expected %q to exist after -S: %v", sPath, err)
	}
	if !strings.Contains(string(assembly), "subq\t$8, %rsp") {
		t.Errorf("expected two stack slots to be allocated, got:\n%s", assembly)
	}
	if !strings.Contains(string(assembly), "negl") || !strings.Contains(string(assembly), "notl") {
		t.Errorf("expected both negl and notl in the output, got:\n%s", assembly)
	}
}
