package repository

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
)

const marksFieldCount = 6

// RecordFileRepository persists student marks in the flat text format: a count
// line followed by one code,name,cw1,cw2,cw3,exam line per student.
type RecordFileRepository struct {
	path   string
	logger *zap.Logger
}

// NewRecordFileRepository constructs a RecordFileRepository for path.
func NewRecordFileRepository(path string, logger *zap.Logger) *RecordFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordFileRepository{path: path, logger: logger}
}

// Location returns the data file path.
func (r *RecordFileRepository) Location() string {
	return r.path
}

// Load reads every well-formed line. The leading count line is discarded, blank
// lines are ignored and malformed lines are logged and skipped. A missing file
// surfaces as an error wrapping fs.ErrNotExist.
func (r *RecordFileRepository) Load(ctx context.Context) ([]models.StudentMarks, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close() //nolint:errcheck

	return r.decode(ctx, f)
}

func (r *RecordFileRepository) decode(ctx context.Context, src io.Reader) ([]models.StudentMarks, error) {
	scanner := bufio.NewScanner(src)
	marks := make([]models.StudentMarks, 0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m, err := ParseMarksLine(line)
		if err != nil {
			r.logger.Warn("skipping malformed student line", zap.String("file", r.path), zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		marks = append(marks, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return marks, nil
}

// Save rewrites the whole file. Content goes to a temporary sibling first and is
// renamed over the data file so a failed write leaves the previous file intact.
func (r *RecordFileRepository) Save(ctx context.Context, marks []models.StudentMarks) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	w := bufio.NewWriter(tmp)
	if err := encodeMarks(w, marks); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush %s: %w", r.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

func encodeMarks(w io.Writer, marks []models.StudentMarks) error {
	if _, err := fmt.Fprintf(w, "%d\n", len(marks)); err != nil {
		return err
	}
	for _, m := range marks {
		if _, err := io.WriteString(w, FormatMarksLine(m)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// ParseMarksLine decodes one code,name,cw1,cw2,cw3,exam line. Range checks are
// left to the caller.
func ParseMarksLine(line string) (models.StudentMarks, error) {
	parts := strings.Split(line, ",")
	if len(parts) != marksFieldCount {
		return models.StudentMarks{}, fmt.Errorf("expected %d fields, got %d", marksFieldCount, len(parts))
	}
	nums := make([]int, 0, 5)
	for i, raw := range parts {
		if i == 1 {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return models.StudentMarks{}, fmt.Errorf("field %d is not a whole number: %q", i+1, raw)
		}
		nums = append(nums, v)
	}
	return models.StudentMarks{
		Code: nums[0],
		Name: strings.TrimSpace(parts[1]),
		CW1:  nums[1],
		CW2:  nums[2],
		CW3:  nums[3],
		Exam: nums[4],
	}, nil
}

// FormatMarksLine encodes marks as a single data line without a trailing newline.
func FormatMarksLine(m models.StudentMarks) string {
	return fmt.Sprintf("%d,%s,%d,%d,%d,%d", m.Code, m.Name, m.CW1, m.CW2, m.CW3, m.Exam)
}
