package fixtures

import (
	"path/filepath"
	"runtime"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// ArtifactsDir is a Hardhat artifacts tree holding the six platform
// contracts with minimal bytecode.
func ArtifactsDir() string {
	return filepath.Join(fixturesDir(), "artifacts", "contracts")
}

// Path returns the absolute path of a fixture file.
func Path(elem ...string) string {
	return filepath.Join(append([]string{fixturesDir()}, elem...)...)
}
