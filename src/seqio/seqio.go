/*
	the seqio package reads sequence records from FASTA, FASTQ, SAM and BAM files (or STDIN) for sketching
*/
package seqio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	bioalphabet "github.com/biogo/biogo/alphabet"
	bioseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/will-rowe/smash/src/kmer"
)

// Format is a sequence file format
type Format uint8

// the supported input formats
const (
	FASTA Format = iota
	FASTQ
	SAM
	BAM

	// Detect chooses between FASTA and FASTQ from the first byte of the data
	Detect
)

func (f Format) String() string {
	switch f {
	case FASTA:
		return "FASTA"
	case FASTQ:
		return "FASTQ"
	case SAM:
		return "SAM"
	case BAM:
		return "BAM"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// the recognised extensions for each format
var extensions = map[string]Format{
	"fa":    FASTA,
	"fasta": FASTA,
	"fna":   FASTA,
	"ffn":   FASTA,
	"faa":   FASTA,
	"fas":   FASTA,
	"fq":    FASTQ,
	"fastq": FASTQ,
	"sam":   SAM,
	"bam":   BAM,
}

// Extensions returns the recognised file extensions, without the leading dot
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FormatFromPath returns the format of a file from its extension, ignoring any .gz suffix
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(path, ".gz")), ".")
	if f, ok := extensions[strings.ToLower(ext)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("file does not have recognised extension: %v", path)
}

// Record is a single sequence record
type Record struct {
	ID  string
	Seq []byte
}

// Reader streams records from a sequence source
type Reader struct {
	next    func() (Record, error)
	rec     Record
	err     error
	closers []io.Closer
}

// Open returns a Reader for a sequence file, or STDIN if path is "-".
// Gzipped FASTA/FASTQ is handled, STDIN is sniffed for FASTA or FASTQ.
// If protein is set, FASTA/FASTQ records are read as amino acids.
func Open(path string, protein bool) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin, Detect, protein)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = fh
	closers := []io.Closer{fh}
	if format != BAM && strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		closers = append(closers, gz)
		r = gz
	}
	reader, err := NewReader(r, format, protein)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, err
	}
	reader.closers = closers
	return reader, nil
}

// NewReader returns a Reader for an uncompressed stream of the given format.
func NewReader(r io.Reader, format Format, protein bool) (*Reader, error) {
	if format == Detect {
		br := bufio.NewReader(r)
		first, err := br.Peek(1)
		if err != nil {
			return nil, fmt.Errorf("could not read sequence data: %v", err)
		}
		switch first[0] {
		case '>':
			format = FASTA
		case '@':
			format = FASTQ
		default:
			return nil, fmt.Errorf("could not detect the sequence format, data starts with %q", first[0])
		}
		r = br
	}

	var alpha bioalphabet.Alphabet = bioalphabet.DNA
	if protein {
		alpha = bioalphabet.Protein
	}
	reader := &Reader{}
	switch format {
	case FASTA:
		reader.next = scanLetters(bioseqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alpha))))
	case FASTQ:
		reader.next = scanLetters(bioseqio.NewScanner(fastq.NewReader(r, linear.NewQSeq("", nil, alpha, bioalphabet.Sanger))))
	case SAM, BAM:
		if protein {
			return nil, fmt.Errorf("%v records can't hold protein sequences", format)
		}
		next, err := alignmentRecords(r, format)
		if err != nil {
			return nil, err
		}
		reader.next = next
	default:
		return nil, fmt.Errorf("unknown sequence format: %v", format)
	}
	return reader, nil
}

// scanLetters wraps a biogo scanner
func scanLetters(sc *bioseqio.Scanner) func() (Record, error) {
	return func() (Record, error) {
		if !sc.Next() {
			if err := sc.Error(); err != nil {
				return Record{}, err
			}
			return Record{}, io.EOF
		}
		switch s := sc.Seq().(type) {
		case *linear.Seq:
			seq := make([]byte, len(s.Seq))
			for i, l := range s.Seq {
				seq[i] = byte(l)
			}
			return Record{ID: s.Name(), Seq: seq}, nil
		case *linear.QSeq:
			seq := make([]byte, len(s.Seq))
			for i, ql := range s.Seq {
				seq[i] = byte(ql.L)
			}
			return Record{ID: s.Name(), Seq: seq}, nil
		default:
			return Record{}, fmt.Errorf("unexpected sequence type %T", s)
		}
	}
}

// alignmentRecords reads the primary records of a SAM or BAM stream, restoring reads
// that were aligned to the reverse strand to their sequenced orientation
func alignmentRecords(r io.Reader, format Format) (func() (Record, error), error) {
	var read func() (*sam.Record, error)
	if format == BAM {
		br, err := bam.NewReader(r, 0)
		if err != nil {
			return nil, err
		}
		read = br.Read
	} else {
		sr, err := sam.NewReader(r)
		if err != nil {
			return nil, err
		}
		read = sr.Read
	}
	return func() (Record, error) {
		for {
			rec, err := read()
			if err != nil {
				return Record{}, err
			}
			if rec.Flags&(sam.Secondary|sam.Supplementary) != 0 {
				continue
			}
			seq := rec.Seq.Expand()
			if rec.Flags&sam.Reverse != 0 {
				seq = kmer.ReverseComplement(nil, seq)
			}
			return Record{ID: rec.Name, Seq: seq}, nil
		}
	}, nil
}

// Next advances to the next record, returning false at the end of the input or on error
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	r.rec, r.err = r.next()
	return r.err == nil
}

// Record returns the current record
func (r *Reader) Record() Record {
	return r.rec
}

// Err returns the first error encountered, reaching the end of the input is not an error
func (r *Reader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// Close releases the files held by the reader
func (r *Reader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if cerr := r.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	r.closers = nil
	return err
}
