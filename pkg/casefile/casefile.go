package casefile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nethoundsh/autocompare/pkg/pattern"
	"github.com/rs/zerolog/log"
)

// OpenError reports a case file that could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open file %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Case is one input/expected-output pair, identified by its 1-based index.
type Case struct {
	Index        int
	InputPath    string
	ExpectedPath string

	input    *os.File
	expected *os.File
}

// Data holds the fully read contents of a case.
type Data struct {
	Input        []byte
	Expected     []byte
	InputMeta    Meta
	ExpectedMeta Meta
}

// Set owns the open file handles of every case in a run.
type Set struct {
	cases []Case
}

// Open expands both patterns for indexes 1..count and opens every file up
// front. If any file fails to open, the handles opened so far are closed
// and an *OpenError naming the file is returned.
func Open(in, out pattern.Pattern, count int) (*Set, error) {
	s := &Set{cases: make([]Case, 0, count)}
	for i := 1; i <= count; i++ {
		c := Case{
			Index:        i,
			InputPath:    in.Expand(i),
			ExpectedPath: out.Expand(i),
		}

		var err error
		if c.input, err = openFile(c.InputPath); err != nil {
			_ = s.Close()
			return nil, err
		}
		if c.expected, err = openFile(c.ExpectedPath); err != nil {
			_ = c.input.Close()
			_ = s.Close()
			return nil, err
		}
		s.cases = append(s.cases, c)
	}
	return s, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	log.Debug().Str("path", path).Msg("opened case file")
	return f, nil
}

func (s *Set) Len() int { return len(s.cases) }

// Case returns the case at the 0-based position i.
func (s *Set) Case(i int) Case { return s.cases[i] }

// Load reads both files of the case at position i into buffers sized to
// the files' lengths.
func (s *Set) Load(i int) (Data, error) {
	c := s.cases[i]
	input, inMeta, err := readEntire(c.input)
	if err != nil {
		return Data{}, err
	}
	expected, expMeta, err := readEntire(c.expected)
	if err != nil {
		return Data{}, err
	}
	return Data{
		Input:        input,
		Expected:     expected,
		InputMeta:    inMeta,
		ExpectedMeta: expMeta,
	}, nil
}

func readEntire(f *os.File) ([]byte, Meta, error) {
	if f == nil {
		return nil, Meta{}, errors.New("case file already closed")
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, Meta{}, fmt.Errorf("stat %s: %w", f.Name(), err)
	}
	buf := make([]byte, fi.Size())
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, fi.Size()), buf); err != nil {
		return nil, Meta{}, fmt.Errorf("reading %s: %w", f.Name(), err)
	}
	return buf, NewMeta(f.Name(), fi), nil
}

// Close releases every open handle. It is safe to call more than once.
func (s *Set) Close() error {
	var errs []error
	for i := range s.cases {
		c := &s.cases[i]
		if c.input != nil {
			errs = append(errs, c.input.Close())
			c.input = nil
		}
		if c.expected != nil {
			errs = append(errs, c.expected.Close())
			c.expected = nil
		}
	}
	return errors.Join(errs...)
}
