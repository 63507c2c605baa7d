package signature

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/vmihailenco/msgpack.v2"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/minhash"
)

// ErrMalformed is returned when persisted signatures can't be decoded or break a sketch invariant
var ErrMalformed = errors.New("malformed signature data")

// the fixed fields of a persisted signature
const (
	signatureClass   = "sourmash_signature"
	signatureLicense = "CC0"
	formatVersion    = 0.4
)

// Format is an encoding for persisted signatures
type Format uint8

// the supported formats
const (
	JSON Format = iota
	MsgPack
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case MsgPack:
		return "msgpack"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// ParseFormat converts a format name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json", "sig":
		return JSON, nil
	case "msgpack", "mp":
		return MsgPack, nil
	}
	return 0, fmt.Errorf("unknown signature format: %q", name)
}

// FormatFromPath chooses a format from a file extension, ignoring any .gz suffix
func FormatFromPath(path string) Format {
	path = strings.TrimSuffix(path, ".gz")
	switch filepath.Ext(path) {
	case ".msgpack", ".mp":
		return MsgPack
	}
	return JSON
}

// signatureRecord is the persisted form of a signature
type signatureRecord struct {
	Class      string         `json:"class" msgpack:"class"`
	Email      string         `json:"email" msgpack:"email"`
	HashFunc   string         `json:"hash_function" msgpack:"hash_function"`
	Filename   string         `json:"filename" msgpack:"filename"`
	Name       string         `json:"name,omitempty" msgpack:"name"`
	License    string         `json:"license" msgpack:"license"`
	Signatures []sketchRecord `json:"signatures" msgpack:"signatures"`
	Version    float64        `json:"version" msgpack:"version"`
}

// sketchRecord is the persisted form of a sketch.
// A non-zero num marks a num sketch, otherwise max_hash holds the scaled threshold and scaled
// the factor it came from (older files only carry max_hash).
type sketchRecord struct {
	KSize          uint     `json:"ksize" msgpack:"ksize"`
	Molecule       string   `json:"molecule" msgpack:"molecule"`
	Seed           uint32   `json:"seed" msgpack:"seed"`
	Num            uint64   `json:"num" msgpack:"num"`
	MaxHash        uint64   `json:"max_hash" msgpack:"max_hash"`
	Scaled         uint64   `json:"scaled,omitempty" msgpack:"scaled"`
	TrackAbundance bool     `json:"track_abundance" msgpack:"track_abundance"`
	SingleStrand   bool     `json:"single_strand,omitempty" msgpack:"single_strand"`
	HashFunction   string   `json:"hash_function" msgpack:"hash_function"`
	Mins           []uint64 `json:"mins" msgpack:"mins"`
	Abundances     []uint64 `json:"abundances,omitempty" msgpack:"abundances"`
	MD5            string   `json:"md5sum" msgpack:"md5sum"`
}

func toRecord(sig *Signature) signatureRecord {
	rec := signatureRecord{
		Class:      signatureClass,
		HashFunc:   minhash.Murmur64.String(),
		Filename:   sig.Filename,
		Name:       sig.Name,
		License:    signatureLicense,
		Signatures: make([]sketchRecord, 0, len(sig.sketches)),
		Version:    formatVersion,
	}
	if len(sig.sketches) != 0 {
		rec.HashFunc = sig.sketches[0].Params().HashFunction.String()
	}
	for _, sketch := range sig.sketches {
		p := sketch.Params()
		sr := sketchRecord{
			KSize:          p.KSize,
			Molecule:       p.Molecule.String(),
			Seed:           p.Seed,
			TrackAbundance: p.TrackAbundance,
			SingleStrand:   p.SingleStrand,
			HashFunction:   p.HashFunction.String(),
			Mins:           sketch.Mins(),
			Abundances:     sketch.Abundances(),
			MD5:            sketch.MD5(),
		}
		switch size := p.Size.(type) {
		case minhash.Num:
			sr.Num = uint64(size)
		case minhash.Scaled:
			sr.MaxHash = size.MaxHash()
			sr.Scaled = uint64(size)
		}
		rec.Signatures = append(rec.Signatures, sr)
	}
	return rec
}

func fromRecord(rec signatureRecord) (*Signature, error) {
	sketches := make([]*minhash.Sketch, 0, len(rec.Signatures))
	for i, sr := range rec.Signatures {
		sketch, err := sr.sketch()
		if err != nil {
			return nil, fmt.Errorf("%w: sketch %d of %q: %v", ErrMalformed, i, rec.Name, err)
		}
		sketches = append(sketches, sketch)
	}
	sig, err := FromSketches(rec.Name, rec.Filename, sketches...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return sig, nil
}

func (sr sketchRecord) sketch() (*minhash.Sketch, error) {
	molecule, err := alphabet.ParseMolecule(sr.Molecule)
	if err != nil {
		return nil, err
	}
	hf := minhash.Murmur64
	if sr.HashFunction != "" {
		if hf, err = minhash.ParseHashFunction(sr.HashFunction); err != nil {
			return nil, err
		}
	}
	var size minhash.Size
	switch {
	case sr.Num != 0 && (sr.MaxHash != 0 || sr.Scaled != 0):
		return nil, fmt.Errorf("both num and max_hash are set")
	case sr.Num != 0:
		size = minhash.Num(sr.Num)
	case sr.Scaled != 0:
		scaled := minhash.Scaled(sr.Scaled)
		if sr.MaxHash != 0 && scaled.MaxHash() != sr.MaxHash {
			return nil, fmt.Errorf("max_hash %d does not match scaled %d", sr.MaxHash, sr.Scaled)
		}
		size = scaled
	case sr.MaxHash != 0:
		size = minhash.ScaledFromMaxHash(sr.MaxHash)
	default:
		return nil, fmt.Errorf("neither num nor max_hash is set")
	}
	p := minhash.Params{
		KSize:          sr.KSize,
		Molecule:       molecule,
		Seed:           sr.Seed,
		Size:           size,
		TrackAbundance: sr.TrackAbundance || len(sr.Abundances) != 0,
		SingleStrand:   sr.SingleStrand,
		HashFunction:   hf,
	}
	mins := sr.Mins
	if mins == nil {
		mins = []uint64{}
	}
	sketch, err := minhash.FromParts(p, mins, sr.Abundances)
	if err != nil {
		return nil, err
	}
	if sr.MD5 != "" && sr.MD5 != sketch.MD5() {
		return nil, fmt.Errorf("md5sum %s does not match the hashes", sr.MD5)
	}
	return sketch, nil
}

// Save writes signatures to w in the given format
func Save(w io.Writer, format Format, sigs ...*Signature) error {
	records := make([]signatureRecord, 0, len(sigs))
	for _, sig := range sigs {
		records = append(records, toRecord(sig))
	}
	switch format {
	case JSON:
		return json.NewEncoder(w).Encode(records)
	case MsgPack:
		return msgpack.NewEncoder(w).Encode(records)
	}
	return fmt.Errorf("unknown signature format: %v", format)
}

// Load reads every signature from r. JSON or msgpack encoding, optionally gzipped, is detected from the content.
func Load(r io.Reader) ([]*Signature, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return Load(gz)
	}
	data, err := ioutil.ReadAll(br)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: no signatures found", ErrMalformed)
	}

	var records []signatureRecord
	switch trimmed[0] {
	case '[':
		err = json.Unmarshal(trimmed, &records)
	case '{':
		var rec signatureRecord
		err = json.Unmarshal(trimmed, &rec)
		records = append(records, rec)
	default:
		err = msgpack.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	sigs := make([]*Signature, 0, len(records))
	for _, rec := range records {
		sig, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// SaveFile writes signatures to a file, choosing the format from the extension and gzipping
// when the path ends in .gz
func SaveFile(path string, sigs ...*Signature) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
	}()
	var w io.Writer = fh
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(fh)
		defer func() {
			if cerr := gz.Close(); err == nil {
				err = cerr
			}
		}()
		w = gz
	}
	return Save(w, FormatFromPath(path), sigs...)
}

// LoadFile reads every signature in a file
func LoadFile(path string) ([]*Signature, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	sigs, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return sigs, nil
}
