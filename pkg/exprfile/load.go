package exprfile

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	"github.com/matzehuels/exprgraph/pkg/observability"
)

// Supported document formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatHCL  = "hcl"
)

var extFormats = map[string]string{
	".toml": FormatTOML,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".json": FormatJSON,
	".hcl":  FormatHCL,
}

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(p string) (string, error) {
	ext := strings.ToLower(path.Ext(p))
	if f, ok := extFormats[ext]; ok {
		return f, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "cannot infer document format from %q (want .toml, .yaml, .yml, .json or .hcl)", p)
}

// Load reads and validates a document from a local path or any URL the afs
// storage layer understands (file://, mem://, s3://, ...).
func Load(ctx context.Context, url string) (*Document, error) {
	format, err := FormatFromPath(url)
	if err != nil {
		return nil, err
	}

	fs := afs.New()
	ok, err := fs.Exists(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "stat %s", url)
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeFileNotFound, "document not found: %s", url)
	}

	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "read %s", url)
	}
	observability.Storage().OnRead(ctx, url, len(data))

	doc, err := parse(data, format, path.Base(url))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes and validates a document in the given format.
func Parse(data []byte, format string) (*Document, error) {
	return parse(data, format, "document."+format)
}

func parse(data []byte, format, filename string) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatHCL:
		err = decodeHCL(data, filename, &doc)
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// hclDocument mirrors Document using blocks labeled by name:
//
//	root = "L"
//	leaf "a" { value = 2.0 }
//	op "e" {
//	  op    = "*"
//	  left  = "a"
//	  right = "b"
//	}
//	grad = { L = 1.0 }
type hclDocument struct {
	Root   string             `hcl:"root"`
	Leaves []hclLeaf          `hcl:"leaf,block"`
	Ops    []hclOp            `hcl:"op,block"`
	Grad   map[string]float64 `hcl:"grad,optional"`
}

type hclLeaf struct {
	Label  string  `hcl:"label,label"`
	Value  float64 `hcl:"value"`
	Shared bool    `hcl:"shared,optional"`
}

type hclOp struct {
	Label string `hcl:"label,label"`
	Op    string `hcl:"op"`
	Left  string `hcl:"left"`
	Right string `hcl:"right"`
}

func decodeHCL(data []byte, filename string, doc *Document) error {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return diags
	}
	var raw hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return diags
	}

	doc.Root = raw.Root
	doc.Grad = raw.Grad
	for _, l := range raw.Leaves {
		doc.Leaves = append(doc.Leaves, Leaf(l))
	}
	for _, o := range raw.Ops {
		doc.Ops = append(doc.Ops, Operation(o))
	}
	return nil
}
