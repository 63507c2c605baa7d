package seqio

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// setup variables
var (
	l1 = "@0_chr1_0_186027_186126_263_(Bla)BIC-1:GQ260093:1-885:885"
	l2 = "acagcaggaaggcttactggagaaacgtatcgactataagaatcgggtgatggaacctcactctcccatcagcgcacaacatagttcgacgggtatgacc"
	l3 = "+"
	l4 = "====@==@AAD?>D@@==DACBC?@BB@C==AB==A@D>AD==?CB==@=B?=A>D?=DB=?>>D@EB===??=@C=?C>@>@B>=?C@@>=====?@>="

	fastqData = strings.Join([]string{l1, l2, l3, l4, "@read2", "ACGT", "+", "IIII"}, "\n") + "\n"
	fastaData = ">seq1 a description\nACGTACGT\nTTTT\n>seq2\nMKVLL*\n"
	samData   = strings.Join([]string{
		"@SQ\tSN:ref\tLN:100",
		"fwd\t0\tref\t1\t60\t9M\t*\t0\t0\tAACCGGTTA\t*",
		"rev\t16\tref\t1\t60\t9M\t*\t0\t0\tAACCGGTTA\t*",
		"sec\t256\tref\t1\t60\t9M\t*\t0\t0\tAACCGGTTA\t*",
	}, "\n") + "\n"
)

// readAll is a helper to collect every record from a reader
func readAll(t *testing.T, r *Reader) []Record {
	t.Helper()
	records := []Record{}
	for r.Next() {
		records = append(records, r.Record())
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	return records
}

// writeFile is a helper to write (optionally gzipped) test data to a temp dir
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := []byte(data)
	if strings.HasSuffix(name, ".gz") {
		buf := &bytes.Buffer{}
		gz := gzip.NewWriter(buf)
		if _, err := gz.Write(content); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		content = buf.Bytes()
	}
	if err := ioutil.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"reads.fq.gz":     FASTQ,
		"reads.FASTQ":     FASTQ,
		"genome.fna":      FASTA,
		"dir.v1/genes.fa": FASTA,
		"aln.sam":         SAM,
		"aln.bam":         BAM,
	}
	for path, expected := range tests {
		if f, err := FormatFromPath(path); err != nil || f != expected {
			t.Fatalf("%v: expected %v, got %v (%v)", path, expected, f, err)
		}
	}
	if _, err := FormatFromPath("notes.txt"); err == nil {
		t.Fatal("expected an error for an unknown extension")
	}
}

func TestFASTA(t *testing.T) {
	r, err := NewReader(strings.NewReader(fastaData), FASTA, true)
	if err != nil {
		t.Fatal(err)
	}
	records := readAll(t, r)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "seq1" || string(records[0].Seq) != "ACGTACGTTTTT" {
		t.Fatalf("unexpected first record: %v %s", records[0].ID, records[0].Seq)
	}
	if records[1].ID != "seq2" || string(records[1].Seq) != "MKVLL*" {
		t.Fatalf("unexpected second record: %v %s", records[1].ID, records[1].Seq)
	}
}

func TestFASTQFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "smash-seqio")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	for _, name := range []string{"reads.fastq", "reads.fq.gz"} {
		r, err := Open(writeFile(t, dir, name, fastqData), false)
		if err != nil {
			t.Fatal(err)
		}
		records := readAll(t, r)
		if len(records) != 2 {
			t.Fatalf("%v: expected 2 records, got %d", name, len(records))
		}
		if records[0].ID != l1[1:] || string(records[0].Seq) != l2 {
			t.Fatalf("%v: unexpected first record: %v %s", name, records[0].ID, records[0].Seq)
		}
		if string(records[1].Seq) != "ACGT" {
			t.Fatalf("%v: unexpected second record %s", name, records[1].Seq)
		}
	}
	if _, err := Open(filepath.Join(dir, "missing.fq"), false); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDetect(t *testing.T) {
	for data, n := range map[string]int{fastaData: 2, fastqData: 2} {
		r, err := NewReader(strings.NewReader(data), Detect, false)
		if err != nil {
			t.Fatal(err)
		}
		if records := readAll(t, r); len(records) != n {
			t.Fatalf("expected %d records, got %d", n, len(records))
		}
	}
	if _, err := NewReader(strings.NewReader("ACGT"), Detect, false); err == nil {
		t.Fatal("expected an error for undetectable data")
	}
}

func TestSAM(t *testing.T) {
	r, err := NewReader(strings.NewReader(samData), SAM, false)
	if err != nil {
		t.Fatal(err)
	}
	records := readAll(t, r)
	if len(records) != 2 {
		t.Fatalf("secondary alignments should be skipped, got %d records", len(records))
	}
	if records[0].ID != "fwd" || string(records[0].Seq) != "AACCGGTTA" {
		t.Fatalf("unexpected forward record: %v %s", records[0].ID, records[0].Seq)
	}
	if records[1].ID != "rev" || string(records[1].Seq) != "TAACCGGTT" {
		t.Fatalf("reverse strand record was not restored: %v %s", records[1].ID, records[1].Seq)
	}
	if _, err := NewReader(strings.NewReader(samData), SAM, true); err == nil {
		t.Fatal("alignments can't be read as protein")
	}
}

// samToBAM is a helper to convert the SAM test data to BAM
func samToBAM(t *testing.T) []byte {
	t.Helper()
	sr, err := sam.NewReader(strings.NewReader(samData))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	bw, err := bam.NewWriter(&buf, sr.Header(), 1)
	if err != nil {
		t.Fatal(err)
	}
	for {
		rec, err := sr.Read()
		if err != nil {
			break
		}
		if err := bw.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBAM(t *testing.T) {
	bamData := samToBAM(t)
	r, err := NewReader(bytes.NewReader(bamData), BAM, false)
	if err != nil {
		t.Fatal(err)
	}
	records := readAll(t, r)
	if len(records) != 2 {
		t.Fatalf("secondary alignments should be skipped, got %d records", len(records))
	}
	if records[0].ID != "fwd" || string(records[0].Seq) != "AACCGGTTA" {
		t.Fatalf("unexpected forward record: %v %s", records[0].ID, records[0].Seq)
	}
	if records[1].ID != "rev" || string(records[1].Seq) != "TAACCGGTT" {
		t.Fatalf("reverse strand record was not restored: %v %s", records[1].ID, records[1].Seq)
	}

	// BAM files are opened by extension and are never treated as gzip text
	dir, err := ioutil.TempDir("", "smash-seqio")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "reads.bam")
	if err := ioutil.WriteFile(path, bamData, 0644); err != nil {
		t.Fatal(err)
	}
	fr, err := Open(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()
	if len(readAll(t, fr)) != 2 {
		t.Fatal("expected 2 records from the BAM file")
	}
}

func TestExtensions(t *testing.T) {
	exts := Extensions()
	if len(exts) != len(extensions) {
		t.Fatalf("expected %d extensions, got %d", len(extensions), len(exts))
	}
	for _, ext := range exts {
		if _, err := FormatFromPath("reads." + ext); err != nil {
			t.Fatal(err)
		}
	}
}
