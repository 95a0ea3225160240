package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds graph, output and playable names.
const maxNameLength = 256

// sceneExtensions lists the file extensions a scene description may use.
var sceneExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".toml": true,
	".json": true,
}

// ValidateName validates a graph, output or playable name.
// Names are shown in toolbars, terminal views and SVG output, so they must
// be printable and reasonably short. An empty name is allowed; callers
// substitute a placeholder for display.
func ValidateName(name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// entityIDRegex matches identifiers used to reference playables inside a scene.
var entityIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateEntityID validates a playable identifier inside a scene description.
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidScene, "playable id cannot be empty")
	}
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidScene, "playable id too long (max %d characters)", maxNameLength)
	}
	if !entityIDRegex.MatchString(id) {
		return New(ErrCodeInvalidScene, "invalid playable id: %q", id)
	}
	return nil
}

// ValidateSceneFilename validates a scene filename for safety.
// It ensures the filename is a simple basename with a supported extension.
func ValidateSceneFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "scene filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "scene filename cannot contain path separators")
	}

	// Editors leave hidden swap files next to the real ones
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "scene filename cannot be a hidden file")
	}

	if !sceneExtensions[strings.ToLower(filepath.Ext(filename))] {
		return New(ErrCodeInvalidFormat, "unsupported scene extension: %q", filepath.Ext(filename))
	}

	return nil
}

// IsSceneFile reports whether a path names a scene description blendview can load.
func IsSceneFile(path string) bool {
	return ValidateSceneFilename(filepath.Base(path)) == nil
}

// graphIDRegex matches graph identifiers issued by hosts (UUIDs and similar).
var graphIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,127}$`)

// ValidateGraphID validates a graph identifier received from an API path.
func ValidateGraphID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "graph id cannot be empty")
	}
	if !graphIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid graph id: %q", id)
	}
	return nil
}
