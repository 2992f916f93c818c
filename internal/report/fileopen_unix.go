//go:build !windows

package report

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/tack/internal/errors"
)

// openFileNoFollow opens a file for writing with O_NOFOLLOW to prevent symlink
// attacks on the final path component. O_CLOEXEC prevents FD leaks across
// exec. Directory components are covered by ValidateExportPath, which requires
// the file to sit directly in the exports directory.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot write to symlink")
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}
