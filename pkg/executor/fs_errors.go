package executor

import (
	stderrors "errors"
	"io/fs"
)

func isPermission(err error) bool {
	return stderrors.Is(err, fs.ErrPermission)
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}
