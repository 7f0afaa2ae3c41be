package main

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"codeberg.org/talespin/server/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routerAnnotation = regexp.MustCompile(`@Router\s+(\S+)\s+\[(\w+)\]`)

// annotated routes in handler sources, as "METHOD path"
func annotatedRoutes(t *testing.T, roots ...string) []string {
	t.Helper()

	var routes []string

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}

			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			for _, m := range routerAnnotation.FindAllStringSubmatch(string(src), -1) {
				routes = append(routes, strings.ToUpper(m[2])+" "+m[1])
			}

			return nil
		})
		require.NoError(t, err)
	}

	return routes
}

// the checked-in docs must be regenerated with go generate when handlers change
func TestGeneratedDocsMatchAnnotations(t *testing.T) {
	src, err := os.ReadFile("main.go")
	require.NoError(t, err)
	assert.Contains(t, string(src), "//go:generate go run github.com/swaggo/swag/cmd/swag")

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	routes := annotatedRoutes(t, "../../api", ".")
	require.NotEmpty(t, routes)

	documented := 0
	for _, ops := range doc.Paths {
		documented += len(ops)
	}

	for _, route := range routes {
		method, path, _ := strings.Cut(route, " ")
		assert.Contains(t, doc.Paths[path], strings.ToLower(method), "%s missing from docs", route)
	}

	assert.Equal(t, len(routes), documented, "docs list operations no handler annotates")
}
