package connector

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/logger"
)

// tempKeyDir is where inline keys are materialized. Tests point it elsewhere.
var tempKeyDir = os.TempDir()

// newTempKeyFile writes key material to a file readable only by the current
// user and returns its path together with a release func that removes it.
func newTempKeyFile(keyData string) (string, func(), error) {
	name := fmt.Sprintf("aymc_key_%d_%s.tmp", os.Getpid(), uuid.NewString())
	path := filepath.Join(tempKeyDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, common.FileMode0600)
	if err != nil {
		return "", nil, newErrorf(IOFailure, err, "create temporary key file %s", path)
	}
	release := func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Log.Warnf("failed to remove temporary key file %s: %v", path, rmErr)
		}
	}

	if _, err := f.WriteString(keyData); err != nil {
		_ = f.Close()
		release()
		return "", nil, newErrorf(IOFailure, err, "write temporary key file %s", path)
	}
	if err := f.Close(); err != nil {
		release()
		return "", nil, newErrorf(IOFailure, err, "close temporary key file %s", path)
	}
	if err := os.Chmod(path, common.FileMode0600); err != nil {
		release()
		return "", nil, newErrorf(IOFailure, err, "chmod temporary key file %s", path)
	}
	return path, release, nil
}
