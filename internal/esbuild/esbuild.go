package esbuild

import (
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/evanw/esbuild/pkg/api"
)

// IsTypeScript reports whether the path needs its types stripped before it
// can be parsed as JavaScript.
func IsTypeScript(filePath string) bool {
	switch path.Ext(filePath) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	default:
		return false
	}
}

// StripTypes removes TypeScript syntax from code. Import and export statements
// are kept verbatim so they can be linked afterwards.
func StripTypes(filePath string, code []byte) ([]byte, error) {
	loader := api.LoaderTS
	if path.Ext(filePath) == ".tsx" {
		loader = api.LoaderTSX
	}
	result := api.Transform(string(code), api.TransformOptions{
		Sourcefile: filePath,
		Loader:     loader,
		Format:     api.FormatDefault,
		// Keep imports that are only used as values in other modules
		TsconfigRaw: `{ "compilerOptions": { "verbatimModuleSyntax": true } }`,
	})
	if len(result.Errors) > 0 {
		return nil, &Error{result.Errors}
	}
	return result.Code, nil
}

// Assignment is a place where the code assigns to one of its imports
type Assignment struct {
	Name   string
	Line   int
	Column int
}

// ImportAssignments finds every assignment to an imported binding, ordered
// by position. esbuild resolves scopes, so assignments to shadowing
// bindings aren't included.
func ImportAssignments(filePath string, code []byte) ([]*Assignment, error) {
	loader := api.LoaderJS
	switch path.Ext(filePath) {
	case ".ts", ".mts", ".cts":
		loader = api.LoaderTS
	case ".tsx":
		loader = api.LoaderTSX
	}
	result := api.Transform(string(code), api.TransformOptions{
		Sourcefile:  filePath,
		Loader:      loader,
		Format:      api.FormatDefault,
		TsconfigRaw: `{ "compilerOptions": { "verbatimModuleSyntax": true } }`,
	})
	if len(result.Errors) > 0 {
		return nil, &Error{result.Errors}
	}
	var assignments []*Assignment
	for _, msg := range result.Warnings {
		loc := msg.Location
		if msg.ID != "assign-to-import" || loc == nil {
			continue
		}
		end := loc.Column + loc.Length
		if loc.Column < 0 || end > len(loc.LineText) {
			continue
		}
		assignments = append(assignments, &Assignment{
			Name:   loc.LineText[loc.Column:end],
			Line:   loc.Line,
			Column: column(loc),
		})
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].Line != assignments[j].Line {
			return assignments[i].Line < assignments[j].Line
		}
		return assignments[i].Column < assignments[j].Column
	})
	return assignments, nil
}

// column converts esbuild's 0-based byte column into a 1-based character
// column
func column(loc *api.Location) int {
	if loc.Column <= len(loc.LineText) {
		return utf8.RuneCountInString(loc.LineText[:loc.Column]) + 1
	}
	return loc.Column + 1
}

type Error struct {
	messages []api.Message
}

// Position of the first error, 1-based. Zero when esbuild didn't report one.
func (e *Error) Position() (line, column int) {
	for _, msg := range e.messages {
		if msg.Location != nil {
			return msg.Location.Line, column(msg.Location)
		}
	}
	return 0, 0
}

func (e *Error) Error() string {
	errors := api.FormatMessages(e.messages, api.FormatMessagesOptions{
		Kind: api.ErrorMessage,
	})
	return strings.TrimSpace(strings.Join(errors, "\n"))
}
