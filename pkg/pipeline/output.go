package pipeline

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"

	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	"github.com/matzehuels/exprgraph/pkg/observability"
)

const artifactMode = 0o644

// OutputURLs maps each artifact format to its destination. base is the path
// or afs URL without extension; each format appends ".<format>". When only
// one format is requested and explicit is set, that URL is used verbatim.
func OutputURLs(base, explicit string, formats []string) map[string]string {
	out := make(map[string]string, len(formats))
	if explicit != "" && len(formats) == 1 {
		out[formats[0]] = explicit
		return out
	}
	if explicit != "" {
		base = strings.TrimSuffix(explicit, path.Ext(explicit))
	}
	for _, f := range formats {
		out[f] = base + "." + f
	}
	return out
}

// WriteArtifacts uploads each artifact to its URL through afs and returns
// the written URLs in sorted order.
func WriteArtifacts(ctx context.Context, artifacts map[string][]byte, urls map[string]string) ([]string, error) {
	fs := afs.New()
	written := make([]string, 0, len(artifacts))
	for format, data := range artifacts {
		url, ok := urls[format]
		if !ok {
			continue
		}
		if err := fs.Upload(ctx, url, artifactMode, bytes.NewReader(data)); err != nil {
			return written, apperrors.Wrap(apperrors.ErrCodeInternal, err, "write %s", url)
		}
		observability.Storage().OnWrite(ctx, url, len(data))
		written = append(written, url)
	}
	sort.Strings(written)
	return written, nil
}
