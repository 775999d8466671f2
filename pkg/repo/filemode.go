package repo

import (
	"os"

	"github.com/odvcencio/shale/pkg/object"
)

// modeFromFileInfo maps an lstat result to a tree mode. ok is false for
// file types a tree cannot hold (devices, sockets, pipes).
func modeFromFileInfo(info os.FileInfo) (mode string, ok bool) {
	switch m := info.Mode(); {
	case m.IsDir():
		return object.TreeModeDir, true
	case m&os.ModeSymlink != 0:
		return object.TreeModeSymlink, true
	case m.IsRegular():
		if m&0o111 != 0 {
			return object.TreeModeExecutable, true
		}
		return object.TreeModeFile, true
	default:
		return "", false
	}
}

func filePermFromMode(mode string) os.FileMode {
	if object.NormalizeMode(mode) == object.TreeModeExecutable {
		return 0o755
	}
	return 0o644
}
