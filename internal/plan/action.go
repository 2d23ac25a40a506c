// Package plan turns a scanned site into an ordered sequence of
// declarative filesystem actions and applies them. Actions are created by
// the planner, consumed once by the executor, in order, and never mutated.
package plan

import "fmt"

// ActionKind enumerates the closed set of filesystem intents.
type ActionKind string

const (
	ActionCopy      ActionKind = "copy"
	ActionDeleteDir ActionKind = "delete_dir"
	ActionCreateDir ActionKind = "create_dir"
	ActionWriteFile ActionKind = "write_file"
)

// FsAction is one declarative, planned filesystem operation. Only the
// fields of the selected kind are meaningful.
type FsAction struct {
	Kind   ActionKind
	Path   string // destination path for every kind
	Source string // Copy: the file to copy

	AllowMissing bool // DeleteDir: deleting an absent path is fine
	Recursive    bool // DeleteDir: remove the whole subtree
	AllowExists  bool // CreateDir: an existing directory is fine

	Content string // WriteFile: full file content
}

// Copy plans copying source to dest, preserving nothing but the bytes.
func Copy(source, dest string) FsAction {
	return FsAction{Kind: ActionCopy, Source: source, Path: dest}
}

// DeleteDir plans removing a directory.
func DeleteDir(path string, allowMissing, recursive bool) FsAction {
	return FsAction{Kind: ActionDeleteDir, Path: path, AllowMissing: allowMissing, Recursive: recursive}
}

// CreateDir plans creating a directory. The parent must already exist.
func CreateDir(path string, allowExists bool) FsAction {
	return FsAction{Kind: ActionCreateDir, Path: path, AllowExists: allowExists}
}

// WriteFile plans creating or overwriting a file with the given content.
func WriteFile(path, content string) FsAction {
	return FsAction{Kind: ActionWriteFile, Path: path, Content: content}
}

// String describes the action for diagnostics.
func (a FsAction) String() string {
	switch a.Kind {
	case ActionCopy:
		return fmt.Sprintf("copy %s -> %s", a.Source, a.Path)
	case ActionDeleteDir:
		return fmt.Sprintf("delete dir %s (allow_missing=%t recursive=%t)", a.Path, a.AllowMissing, a.Recursive)
	case ActionCreateDir:
		return fmt.Sprintf("create dir %s (allow_exists=%t)", a.Path, a.AllowExists)
	case ActionWriteFile:
		return fmt.Sprintf("write file %s (%d bytes)", a.Path, len(a.Content))
	default:
		return fmt.Sprintf("unknown action %q on %s", a.Kind, a.Path)
	}
}
