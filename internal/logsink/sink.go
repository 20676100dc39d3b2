package logsink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tradelog/pkg/xerr"
)

const defaultFilePerm = 0o644

// Label selects one of the per-symbol logs.
type Label string

const (
	LabelRaw    Label = "RAW"
	LabelHuman  Label = "HUMAN"
	LabelChartX Label = "CHART_X"
	LabelChartY Label = "CHART_Y"
)

// validLabels is the whole naming table; writer and loader both go through FileName.
var validLabels = map[Label]string{
	LabelRaw:    "%s_DATA_RAW.txt",
	LabelHuman:  "%s_DATA_HUMAN.txt",
	LabelChartX: "%s_DATA_CHART_X.txt",
	LabelChartY: "%s_DATA_CHART_Y.txt",
}

// IsValid checks if the Label is a known log label
func (l Label) IsValid() bool {
	_, ok := validLabels[l]
	return ok
}

// FileName returns "{symbol}_DATA_{label}.txt".
func FileName(symbol string, label Label) (string, error) {
	pattern, ok := validLabels[label]
	if !ok {
		return "", xerr.Newf(xerr.KindConfiguration, nil, "unknown log label %q", label)
	}
	if symbol == "" {
		return "", xerr.New(xerr.KindConfiguration, "empty symbol", nil)
	}
	return fmt.Sprintf(pattern, symbol), nil
}

// Entry is one text fragment bound for one log.
type Entry struct {
	Label Label
	Text  string
}

// Sink appends text to the symbol/label logs under Dir.
type Sink struct {
	Dir string
}

func New(dir string) *Sink {
	return &Sink{Dir: dir}
}

// Path returns the log file path for (symbol, label).
func (s *Sink) Path(symbol string, label Label) (string, error) {
	name, err := FileName(symbol, label)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

// Append writes text to the end of the (symbol, label) log. The file is
// synced and closed before returning, on success or failure.
func (s *Sink) Append(symbol string, label Label, text string) error {
	path, err := s.Path(symbol, label)
	if err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	return appendFile(path, text)
}

// AppendAll writes entries as one unit: if any entry fails, logs already
// touched by this call are cut back to their previous size.
func (s *Sink) AppendAll(symbol string, entries []Entry) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	var done []mark
	for _, e := range entries {
		path, err := s.Path(symbol, e.Label)
		if err != nil {
			return errors.Join(err, rollback(done))
		}
		size, err := fileSize(path)
		if err != nil {
			return errors.Join(xerr.New(xerr.KindIO, "stat "+path, err), rollback(done))
		}
		f, err := openAppend(path)
		if err != nil {
			return errors.Join(err, rollback(done))
		}
		done = append(done, mark{path: path, size: size})
		if err := writeAndClose(f, e.Text); err != nil {
			return errors.Join(err, rollback(done))
		}
	}
	return nil
}

// mark is a log's size before the current AppendAll touched it.
type mark struct {
	path string
	size int64
}

func rollback(done []mark) error {
	var errs []error
	for _, m := range done {
		if err := os.Truncate(m.path, m.size); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, xerr.New(xerr.KindIO, "rollback "+m.path, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) ensureDir() error {
	if s.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return xerr.New(xerr.KindIO, "create data dir", err)
	}
	return nil
}

func fileSize(path string) (int64, error) {
	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func appendFile(path, text string) error {
	f, err := openAppend(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, text)
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return nil, xerr.New(xerr.KindIO, "open "+path, err)
	}
	return f, nil
}

// writeAndClose writes, syncs and always closes f.
func writeAndClose(f *os.File, text string) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = xerr.New(xerr.KindIO, "close "+f.Name(), cerr)
		}
	}()

	if _, err := f.WriteString(text); err != nil {
		return xerr.New(xerr.KindIO, "write "+f.Name(), err)
	}
	if err := f.Sync(); err != nil {
		return xerr.New(xerr.KindIO, "sync "+f.Name(), err)
	}
	return nil
}
