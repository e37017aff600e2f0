package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

// ReadDocument reads one authored document. YAML documents are converted to
// JSON first so both formats go through content.Decode.
func ReadDocument(fsys fs.FS, name string) (content.Entry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return content.Entry{}, fmt.Errorf("read %s: %w", name, err)
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return content.Entry{}, fmt.Errorf("%s: %w", name, err)
		}
	case ".json":
	default:
		return content.Entry{}, fmt.Errorf("%s: unsupported document extension", name)
	}
	e, err := content.Decode(data)
	if err != nil {
		return content.Entry{}, fmt.Errorf("%s: %w", name, err)
	}
	e.Source = name
	return e, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return json.Marshal(jsonValue(v))
}

// jsonValue rewrites YAML maps with non-string keys (level keys such as 1:)
// into string-keyed maps.
func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonValue(val)
		}
		return out
	default:
		return v
	}
}
