// Package export dumps a definition bundle's parts as plain files under a
// directory and rebuilds a bundle from such a directory. It works against a
// billy filesystem so tests run on memfs and tooling can target any mount.
package export

import (
	"encoding/base64"
	"fmt"
	"io"
	"path"

	"github.com/agentic-research/flowdef/api"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// WriteParts writes every part of the bundle, base64-decoded, under dir.
// Part paths become file paths relative to dir; nested paths create their
// parent directories.
func WriteParts(fs billy.Filesystem, dir string, b *api.DefinitionBundle) error {
	for _, part := range b.Parts {
		raw, err := base64.StdEncoding.DecodeString(part.Payload)
		if err != nil {
			return fmt.Errorf("decode part %s: %w", part.Path, err)
		}
		target := fs.Join(dir, part.Path)
		if parent := path.Dir(part.Path); parent != "." {
			if err := fs.MkdirAll(fs.Join(dir, parent), 0o755); err != nil {
				return fmt.Errorf("mkdir for part %s: %w", part.Path, err)
			}
		}
		if err := util.WriteFile(fs, target, raw, 0o644); err != nil {
			return fmt.Errorf("write part %s: %w", part.Path, err)
		}
	}
	return nil
}

// ReadParts rebuilds a bundle from a directory written by WriteParts.
// Every regular file below dir becomes one part; its path relative to dir,
// slash-separated, is the part path.
func ReadParts(fs billy.Filesystem, dir string) (*api.DefinitionBundle, error) {
	b := &api.DefinitionBundle{}
	if err := collectParts(fs, dir, "", b); err != nil {
		return nil, err
	}
	return b, nil
}

func collectParts(fs billy.Filesystem, root, rel string, b *api.DefinitionBundle) error {
	full := root
	if rel != "" {
		full = fs.Join(root, rel)
	}
	infos, err := fs.ReadDir(full)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", full, err)
	}
	for _, info := range infos {
		childRel := info.Name()
		if rel != "" {
			childRel = rel + "/" + info.Name()
		}
		if info.IsDir() {
			if err := collectParts(fs, root, childRel, b); err != nil {
				return err
			}
			continue
		}
		raw, err := readFile(fs, fs.Join(root, childRel))
		if err != nil {
			return fmt.Errorf("read part %s: %w", childRel, err)
		}
		b.Parts = append(b.Parts, api.Part{
			Path:        childRel,
			Payload:     base64.StdEncoding.EncodeToString(raw),
			PayloadType: api.PayloadTypeInlineBase64,
		})
	}
	return nil
}

func readFile(fs billy.Filesystem, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
