package process_blob

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"memsnap/process"
	"memsnap/process/memory_map"
	"memsnap/sink"
)

func writeCapture(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "capture")

	s, err := sink.CreateDir(dir, sink.DirMetadata{SessionID: "abc", PID: 77, Name: "worker"})
	if err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	regions := []struct {
		r    memory_map.MemoryRegion
		data string
	}{
		{memory_map.MemoryRegion{Start: 0x1000, End: 0x1008, Perms: "r--p"}, "ABCDEFGH"},
		{memory_map.MemoryRegion{Start: 0x4000, End: 0x4010, Perms: "rw-p"}, "0123"}, // kept partial
	}
	for _, r := range regions {
		if err := s.Append(r.r, []byte(r.data)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dump, err := Load(writeCapture(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if dump.Metadata.PID != 77 || dump.Metadata.Name != "worker" || dump.Metadata.SessionID != "abc" {
		t.Errorf("Metadata = %+v", dump.Metadata)
	}
	mm := dump.MemoryMap()
	if len(mm) != 2 || mm[1].Start != 0x4000 || mm[1].End != 0x4010 {
		t.Errorf("MemoryMap = %v", mm)
	}
}

func TestReadMemory(t *testing.T) {
	dump, err := Load(writeCapture(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, err := dump.ReadMemory(0x1002, 3)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	if string(got) != "CDE" {
		t.Errorf("ReadMemory = %q, want CDE", got)
	}

	if _, err := dump.ReadMemory(0x2000, 1); !errors.Is(err, process.ErrAddressNotMapped) {
		t.Errorf("unmapped read err = %v", err)
	}
	if _, err := dump.ReadMemory(0x1006, 4); err == nil {
		t.Error("read past region end succeeded")
	}
	if _, err := dump.ReadMemory(0x4008, 1); err == nil {
		t.Error("read of the uncaptured tail of a partial region succeeded")
	}
}

func TestReadMemory_HugeSizeDoesNotWrap(t *testing.T) {
	dump, err := Load(writeCapture(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// offset+size overflows uint64 here; the read must still be refused.
	if _, err := dump.ReadMemory(0x1002, process.ProcessMemorySize(math.MaxUint64-1)); err == nil {
		t.Error("read with wrapping size succeeded")
	}
	if got, err := dump.ReadMemory(0x1006, 2); err != nil || string(got) != "GH" {
		t.Errorf("ReadMemory(0x1006, 2) = %q, %v; want GH", got, err)
	}
}

func TestWriteArtifact_MatchesRawLayout(t *testing.T) {
	dump, err := Load(writeCapture(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var buf bytes.Buffer
	n, err := dump.WriteArtifact(&buf)
	if err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if n != 12 || buf.String() != "ABCDEFGH0123" {
		t.Errorf("artifact = %q (%d bytes)", buf.String(), n)
	}
}

func TestLoad_MissingBlob(t *testing.T) {
	dir := writeCapture(t)
	name := sink.BlobName(memory_map.MemoryRegion{Start: 0x1000}, 8)
	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Load succeeded with a blob missing")
	}
}

func TestLoad_NotACapture(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load succeeded on an empty directory")
	}
}
