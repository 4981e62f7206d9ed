package app

import (
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
)

// stdio is the path that selects stdin or stdout.
const stdio = "-"

// inputExts lists the extensions picked up when the input is a directory.
var inputExts = map[string]bool{".json": true, ".html": true, ".htm": true, ".md": true, ".markdown": true}

// inputFile is one payload to sanitize.
type inputFile struct {
    Path string
    // Name is the path relative to the input root, used for output naming.
    Name string
}

// listInputs expands the input path into a sorted list of payload files.
// A directory contributes its top-level files with known extensions.
func listInputs(path string) ([]inputFile, bool, error) {
    if path == stdio {
        return []inputFile{{Path: stdio, Name: "stdin.json"}}, false, nil
    }
    info, err := os.Stat(path)
    if err != nil {
        return nil, false, fmt.Errorf("stat input: %w", err)
    }
    if !info.IsDir() {
        return []inputFile{{Path: path, Name: filepath.Base(path)}}, false, nil
    }
    entries, err := os.ReadDir(path)
    if err != nil {
        return nil, true, fmt.Errorf("read input dir: %w", err)
    }
    var out []inputFile
    for _, e := range entries {
        if e.IsDir() || !inputExts[strings.ToLower(filepath.Ext(e.Name()))] {
            continue
        }
        // Skip sidecars from earlier runs written into the same directory
        if strings.HasSuffix(e.Name(), ".manifest.json") {
            continue
        }
        out = append(out, inputFile{Path: filepath.Join(path, e.Name()), Name: e.Name()})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
    return out, true, nil
}

// deriveOutputPath maps an input to its output location. Directory inputs
// write <stem>.json files under the output directory.
func deriveOutputPath(output string, in inputFile, dirMode bool) string {
    if !dirMode {
        if info, err := os.Stat(output); err == nil && info.IsDir() {
            return filepath.Join(output, outputName(in.Name))
        }
        return output
    }
    return filepath.Join(output, outputName(in.Name))
}

func outputName(name string) string {
    return strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
}

// deriveManifestSidecarPath returns a sidecar JSON path next to the output.
func deriveManifestSidecarPath(outputPath string) string {
    return strings.TrimRight(outputPath, string(os.PathSeparator)) + ".manifest.json"
}
