package extract

import (
	"os/exec"
)

// Runner executes an external command and returns its stdout.
// This abstraction allows mocking in tests.
type Runner func(name string, args ...string) (string, error)

// defaultRunner runs the real subprocess.
func defaultRunner(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return string(out), err
}

// runOCR extracts text from an image file with tesseract. OCR operates on
// the real path, so it is only offered for files on the host filesystem.
// A missing binary is reported as a method marker, never an error.
func runOCR(path string, runner Runner) Result {
	if runner == nil {
		if _, err := exec.LookPath("tesseract"); err != nil {
			return Result{Method: "ocr-unavailable"}
		}
		runner = defaultRunner
	}

	out, err := runner("tesseract", path, "stdout")
	if err != nil {
		return Result{Method: "ocr", Err: err}
	}
	return Result{Excerpt: out, Method: "ocr"}
}
