package source

import (
	"bytes"
	"context"
	_ "embed"

	"idverify/pkg/domain/residentid"
)

//go:embed data/regions.yaml
var embeddedRegions []byte

// Embedded serves the region table bundled into the binary. It is the
// default source and the fallback used by the CLI.
type Embedded struct{}

func NewEmbedded() Embedded {
	return Embedded{}
}

func (Embedded) Name() string {
	return "embedded"
}

func (Embedded) Load(ctx context.Context) (map[string]residentid.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DecodeYAML(bytes.NewReader(embeddedRegions))
}
