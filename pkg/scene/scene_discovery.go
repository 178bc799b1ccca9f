package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File extensions recognised by ListSceneFiles
const (
	JSONExt     = ".json"
	CompiledExt = ".scene.zst"
)

// Scene source types
const (
	TypeBuiltin  = "builtin"
	TypeJSON     = "json"
	TypeCompiled = "compiled"
)

const builtinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       string `json:"group"`
	Type        string `json:"type"`
	FilePath    string `json:"filePath,omitempty"`
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type builtin struct {
	info  SceneInfo
	build func() *Scene
}

var builtins = []builtin{
	{SceneInfo{ID: "default", Name: "Default Scene", Description: "Diffuse sphere on a large ground sphere"}, NewDefaultScene},
	{SceneInfo{ID: "materials", Name: "Materials", Description: "Diffuse, glass and metal spheres side by side"}, NewMaterialsScene},
	{SceneInfo{ID: "normals", Name: "Normals", Description: "Surface normals painted as colors"}, NewNormalsScene},
	{SceneInfo{ID: "spheregrid", Name: "Sphere Grid", Description: "10x10 grid of rainbow-colored metallic spheres"}, NewSphereGridScene},
}

// ListBuiltins returns the built-in scenes in display order
func ListBuiltins() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		info := b.info
		info.Group = builtinGroup
		info.Type = TypeBuiltin
		infos = append(infos, info)
	}
	return infos
}

// NewBuiltin constructs the built-in scene with the given id
func NewBuiltin(id string) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID == id {
			return b.build(), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q", id)
}

// ListSceneFiles scans dir for JSON and compiled scene files. A missing
// directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []SceneInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var base, typ, group string
		switch {
		case strings.HasSuffix(name, CompiledExt):
			base, typ, group = strings.TrimSuffix(name, CompiledExt), TypeCompiled, "Compiled Scenes"
		case strings.HasSuffix(name, JSONExt):
			base, typ, group = strings.TrimSuffix(name, JSONExt), TypeJSON, "Scene Files"
		default:
			continue
		}

		scenes = append(scenes, SceneInfo{
			ID:       fmt.Sprintf("%s:%s", typ, base),
			Name:     titleCase(base),
			Group:    group,
			Type:     typ,
			FilePath: filepath.Join(dir, name),
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ListAllScenes returns built-in and file scenes grouped by category, with
// the built-in group first and the rest alphabetical.
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	files, err := ListSceneFiles(dir)
	if err != nil {
		return response, err
	}

	groupMap := make(map[string][]SceneInfo)
	for _, info := range append(ListBuiltins(), files...) {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: groupMap[builtinGroup]})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
