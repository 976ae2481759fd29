package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"two-spheres", "Two Spheres"},
		{"glass_slab", "Glass Slab"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete.zy",
			content: `;; Scene: Two Spheres
;; Description: A red and a blue sphere
;; Group: Examples

(sphere :center (vec3 0 0 0) :radius 1)`,
			expected: SceneInfo{
				Name:        "Two Spheres",
				Description: "A red and a blue sphere",
				Group:       "Examples",
			},
		},
		{
			name: "partial-metadata.zy",
			content: `; Scene: Lonely
(light :position (vec3 0 0 0))
;; Group: Ignored After Code`,
			expected: SceneInfo{
				Name:  "Lonely",
				Group: fileGroup,
			},
		},
		{
			name:    "no_metadata.zy",
			content: `(ambient (rgb 0 0 0))`,
			expected: SceneInfo{
				Name:  "No Metadata", // From filename
				Group: fileGroup,
			},
		},
		{
			name: "odd-comments.zy",
			content: `;;Scene:   Extra Spaces
;; just a remark
;;Description:`,
			expected: SceneInfo{
				Name:  "Extra Spaces",
				Group: fileGroup,
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.name, tc.content)

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			if result.ID != path || result.FilePath != path {
				t.Errorf("ID/FilePath = %q/%q, want %q", result.ID, result.FilePath, path)
			}
			if result.Type != "file" {
				t.Errorf("Type = %q, want file", result.Type)
			}
			if result.Name != tc.expected.Name {
				t.Errorf("Name = %q, want %q", result.Name, tc.expected.Name)
			}
			if result.Description != tc.expected.Description {
				t.Errorf("Description = %q, want %q", result.Description, tc.expected.Description)
			}
			if result.Group != tc.expected.Group {
				t.Errorf("Group = %q, want %q", result.Group, tc.expected.Group)
			}
		})
	}
}

func TestParseSceneMetadata_MissingFile(t *testing.T) {
	if _, err := ParseSceneMetadata(filepath.Join(t.TempDir(), "missing.zy")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestListSceneFiles(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty non-nil slice for missing directory, got %v", scenes)
	}

	dir := t.TempDir()
	writeSceneFile(t, dir, "b.zy", ";; Scene: Beta\n")
	writeSceneFile(t, dir, "a.zy", ";; Scene: Alpha\n")
	writeSceneFile(t, dir, "notes.txt", ";; Scene: Not A Scene\n")

	scenes, err = ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scene files, got %d", len(scenes))
	}
	if scenes[0].Name != "Alpha" || scenes[1].Name != "Beta" {
		t.Errorf("Expected scenes sorted by name, got %q, %q", scenes[0].Name, scenes[1].Name)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "one.zy", ";; Scene: One\n;; Group: Zeta\n")
	writeSceneFile(t, dir, "two.zy", ";; Scene: Two\n;; Group: Alpha\n")
	writeSceneFile(t, dir, "three.zy", ";; Scene: Three\n;; Group: Alpha\n")

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	names := make([]string, len(response.Groups))
	for i, g := range response.Groups {
		names[i] = g.Name
	}
	expected := []string{BuiltinGroup, "Alpha", "Zeta"}
	if len(names) != len(expected) {
		t.Fatalf("Groups = %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Group %d = %q, want %q", i, names[i], expected[i])
		}
	}

	builtin := response.Groups[0]
	if len(builtin.Scenes) != len(BuiltinNames()) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtin.Scenes), len(BuiltinNames()))
	}
	for _, s := range builtin.Scenes {
		if s.Type != "builtin" || s.Name == "" || s.Description == "" {
			t.Errorf("Incomplete built-in scene info %+v", s)
		}
		if _, err := Builtin(s.ID); err != nil {
			t.Errorf("Built-in scene %q does not load: %v", s.ID, err)
		}
	}

	if len(response.Groups[1].Scenes) != 2 {
		t.Errorf("Expected 2 scenes in Alpha, got %d", len(response.Groups[1].Scenes))
	}
}
