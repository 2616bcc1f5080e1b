package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Reader iterates the records of a replay file.
type Reader struct {
	f       *os.File
	dec     *zstd.Decoder
	scanner *bufio.Scanner
	line    int
}

// Open opens the replay at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 256*1024), 64<<20)
	return &Reader{f: f, dec: dec, scanner: sc}, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return Record{}, fmt.Errorf("replay: line %d: %w", r.line+1, err)
		}
		return Record{}, io.EOF
	}
	r.line++
	var rec Record
	if err := json.Unmarshal(r.scanner.Bytes(), &rec); err != nil {
		return Record{}, fmt.Errorf("replay: line %d: %w", r.line, err)
	}
	return rec, nil
}

// Close releases the decoder and the file.
func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// Replay is a fully loaded replay file.
type Replay struct {
	Header *Header
	Frames []*Frame
	Result *Result
}

// Load reads a whole replay. A missing result record is allowed since a
// match may have been interrupted.
func Load(path string) (*Replay, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out Replay
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch rec.Kind {
		case KindHeader:
			out.Header = rec.Header
		case KindFrame:
			out.Frames = append(out.Frames, rec.Frame)
		case KindResult:
			out.Result = rec.Result
		default:
			return nil, fmt.Errorf("replay: unknown record kind %q", rec.Kind)
		}
	}
	if out.Header == nil {
		return nil, fmt.Errorf("replay: %s has no header", path)
	}
	return &out, nil
}
