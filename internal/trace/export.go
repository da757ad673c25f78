package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// Export xz-compresses the trace database at dbPath into outPath, producing a
// file small enough to attach to a bug report. The database must not be in
// active use while exporting.
func Export(dbPath, outPath string) error {
	src, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open trace database: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer dst.Close()

	xw, err := xz.NewWriter(dst)
	if err != nil {
		return fmt.Errorf("start xz stream: %w", err)
	}
	if _, err := io.Copy(xw, src); err != nil {
		return fmt.Errorf("compress trace database: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("finish xz stream: %w", err)
	}
	return dst.Close()
}
