package det01

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }

// ErrUnknownVersion is returned when a configuration names an application
// version that is not in the version table.
type ErrUnknownVersion struct {
	Version string
}

func (e *ErrUnknownVersion) Error() string {
	return fmt.Sprintf("unknown application version %q", e.Version)
}

// ErrUnknownFileType is returned for an output file type without a writer.
type ErrUnknownFileType struct {
	FileType string
}

func (e *ErrUnknownFileType) Error() string {
	return fmt.Sprintf("unknown output file type %q", e.FileType)
}

// ErrSchema reports an inconsistent ntuple schema.
type ErrSchema struct {
	Schema string
	Reason string
}

func (e *ErrSchema) Error() string {
	return fmt.Sprintf("invalid ntuple schema %q: %s", e.Schema, e.Reason)
}
