package plan

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Execute applies the actions strictly in order and stops at the first
// failure. There is no retry and no rollback: the destination tree after a
// failed run reflects exactly the prefix of actions already applied.
//
// The existence checks below and the operations that follow them are not
// atomic. The destination tree is assumed single-writer, so a concurrent
// external writer can only change which error class surfaces, not corrupt
// a successful run.
func Execute(actions []FsAction) error {
	for i, action := range actions {
		slog.Debug("Applying action", logfields.Action(string(action.Kind)), logfields.Path(action.Path))
		if err := apply(action); err != nil {
			return sberrors.Wrap(err, sberrors.CategoryExecute, sberrors.SeverityFatal,
				fmt.Sprintf("action %d of %d failed", i+1, len(actions))).
				WithContext("action", action.String())
		}
	}
	return nil
}

func apply(action FsAction) error {
	switch action.Kind {
	case ActionCopy:
		return applyCopy(action)
	case ActionDeleteDir:
		return applyDeleteDir(action)
	case ActionCreateDir:
		return applyCreateDir(action)
	case ActionWriteFile:
		return applyWriteFile(action)
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

func applyCopy(action FsAction) error {
	src, err := os.Open(action.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(action.Path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func applyDeleteDir(action FsAction) error {
	if !action.AllowMissing {
		if _, err := os.Stat(action.Path); os.IsNotExist(err) {
			return fmt.Errorf("there is nothing to delete at %s", action.Path)
		}
	}
	if action.Recursive {
		return os.RemoveAll(action.Path)
	}
	// Non-recursive delete requires the directory to be empty.
	err := os.Remove(action.Path)
	if err != nil && action.AllowMissing && os.IsNotExist(err) {
		return nil
	}
	return err
}

func applyCreateDir(action FsAction) error {
	if action.AllowExists {
		if info, err := os.Stat(action.Path); err == nil {
			if !info.IsDir() {
				return fmt.Errorf("there is already a file (not a directory) at %s", action.Path)
			}
			return nil
		}
	}
	// The parent must pre-exist; no implicit parent creation.
	return os.Mkdir(action.Path, 0o755)
}

func applyWriteFile(action FsAction) error {
	if info, err := os.Stat(action.Path); err == nil && info.IsDir() {
		return fmt.Errorf("there is already a directory (not a file) at %s", action.Path)
	}
	// os.WriteFile handles creation and truncation.
	return os.WriteFile(action.Path, []byte(action.Content), 0o644)
}
