package traverse_test

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"github.com/fakeyudi/scanstamp/internal/traverse"
)

func seedTree(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}
}

func expand(t *testing.T, fs afero.Fs, paths []string, opts traverse.Options) []string {
	t.Helper()
	got, err := traverse.Expand(fs, paths, opts)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	return got
}

func TestExpandDirectFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "scan.pdf")

	got := expand(t, fs, []string{"scan.pdf"}, traverse.Options{})
	want := []string{"scan.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandDropsMissingPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "scan.pdf")

	got := expand(t, fs, []string{"missing.pdf", "scan.pdf"}, traverse.Options{})
	want := []string{"scan.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandDirectoryNonRecursive(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/a.txt", "box/b.pdf", "box/sub/c.txt")

	got := expand(t, fs, []string{"box"}, traverse.Options{})
	want := []string{"box/a.txt", "box/b.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandDirectoryRecursive(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/a.txt", "box/sub/c.txt")

	got := expand(t, fs, []string{"box"}, traverse.Options{Recursive: true})
	want := []string{"box/a.txt", "box/sub/c.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandIncludeFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/a.txt", "box/b.pdf")

	got := expand(t, fs, []string{"box"}, traverse.Options{Include: []string{"*.pdf"}})
	want := []string{"box/b.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandExcludeFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/a.txt", "box/b.pdf")

	got := expand(t, fs, []string{"box"}, traverse.Options{Exclude: []string{"*.pdf"}})
	want := []string{"box/a.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandExcludeBeatsInclude(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/a.pdf", "box/b.pdf")

	got := expand(t, fs, []string{"box"}, traverse.Options{
		Include: []string{"*.pdf"},
		Exclude: []string{"a.*"},
	})
	want := []string{"box/b.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandFullPathPattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/a.txt", "box/sub/c.txt")

	got := expand(t, fs, []string{"box"}, traverse.Options{
		Recursive: true,
		Exclude:   []string{"box/sub/*"},
	})
	want := []string{"box/a.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandGlobPattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "a.txt", "b.txt", "c.pdf")

	got := expand(t, fs, []string{"*.txt"}, traverse.Options{})
	want := []string{"a.txt", "b.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandGlobMatchingDirectoryExpandsIt(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "subbox/a.txt", "other.txt")

	got := expand(t, fs, []string{"sub*"}, traverse.Options{})
	want := []string{"subbox/a.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandBadPattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := traverse.Expand(fs, []string{"[unclosed"}, traverse.Options{}); err == nil {
		t.Fatal("expected error for malformed pattern, got nil")
	}
}

func TestExpandExcludePathsDropRunFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/a.csv", "box/.scanstamp-log.csv")

	got := expand(t, fs, []string{"box"}, traverse.Options{
		ExcludePaths: []string{"box/.scanstamp-log.csv"},
	})
	want := []string{"box/a.csv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandIncludesDotfiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "box/.hidden", "box/plain.txt")

	got := expand(t, fs, []string{"box"}, traverse.Options{})
	want := []string{"box/.hidden", "box/plain.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}

func TestExpandPreservesInputOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedTree(t, fs, "z.txt", "a.txt")

	got := expand(t, fs, []string{"z.txt", "a.txt"}, traverse.Options{})
	want := []string{"z.txt", "a.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expand: want %v, got %v", want, got)
	}
}
